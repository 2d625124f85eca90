package lungo

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Params holds the converted path parameters captured by a pattern match.
type Params map[string]interface{}

type paramSpec struct {
	name     string
	typeName string
	conv     Converter
	valRe    *regexp.Regexp
	tokenRe  *regexp.Regexp
}

// PathPattern is the compiled form of a route path template. Templates mix
// literal segments with {name} or {name:type} placeholders, e.g.
// "/users/{id:int}/files/{rest:path}". Compiling the same template twice
// yields matchers that accept identical path sets.
type PathPattern struct {
	raw    string
	params []paramSpec
	full   *regexp.Regexp
	prefix *regexp.Regexp
}

var paramNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CompilePattern compiles a path template into a matcher. It is deterministic
// and has no side effects. A malformed template yields *PatternCompileError.
func CompilePattern(template string) (*PathPattern, error) {
	raw := normalizePath(template)

	var (
		expr   strings.Builder
		params []paramSpec
		seen   = map[string]bool{}
	)

	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			expr.WriteString(regexp.QuoteMeta(rest))
			break
		}
		expr.WriteString(regexp.QuoteMeta(rest[:open]))
		rest = rest[open:]

		closing := strings.IndexByte(rest, '}')
		if closing < 0 {
			return nil, &PatternCompileError{Template: template, Reason: "unterminated '{' placeholder"}
		}
		token := rest[1:closing]
		rest = rest[closing+1:]

		name, typeName := token, "str"
		if colon := strings.IndexByte(token, ':'); colon >= 0 {
			name, typeName = token[:colon], token[colon+1:]
		}
		if !paramNameRe.MatchString(name) {
			return nil, &PatternCompileError{Template: template, Reason: fmt.Sprintf("invalid parameter name %q", name)}
		}
		if seen[name] {
			return nil, &PatternCompileError{Template: template, Reason: fmt.Sprintf("duplicate parameter name %q", name)}
		}
		seen[name] = true

		conv, ok := lookupConverter(typeName)
		if !ok {
			return nil, &PatternCompileError{Template: template, Reason: fmt.Sprintf("unknown parameter type %q", typeName)}
		}
		if typeName == "path" && rest != "" {
			return nil, &PatternCompileError{Template: template, Reason: "path parameter must be the final segment"}
		}

		params = append(params, paramSpec{
			name:     name,
			typeName: typeName,
			conv:     conv,
			valRe:    regexp.MustCompile("^(?:" + conv.Pattern() + ")$"),
			tokenRe:  regexp.MustCompile(`\{` + name + `(:[^}]+)?\}`),
		})
		fmt.Fprintf(&expr, "(?P<%s>%s)", name, conv.Pattern())
	}

	full, err := regexp.Compile("^" + expr.String() + "$")
	if err != nil {
		return nil, &PatternCompileError{Template: template, Reason: err.Error()}
	}
	prefix, err := regexp.Compile("^" + expr.String())
	if err != nil {
		return nil, &PatternCompileError{Template: template, Reason: err.Error()}
	}

	return &PathPattern{raw: raw, params: params, full: full, prefix: prefix}, nil
}

// MustCompilePattern is CompilePattern that panics on error, for patterns
// known valid at compile time.
func MustCompilePattern(template string) *PathPattern {
	p, err := CompilePattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Raw returns the normalized template the pattern was compiled from.
func (p *PathPattern) Raw() string { return p.raw }

// IsStatic reports whether the pattern contains no parameters.
func (p *PathPattern) IsStatic() bool { return len(p.params) == 0 }

// ParamNames returns the parameter names in template order.
func (p *PathPattern) ParamNames() []string {
	names := make([]string, len(p.params))
	for i, spec := range p.params {
		names[i] = spec.name
	}
	return names
}

// Match matches a request path against the whole pattern. Captures run
// through their converters; a conversion failure is a no-match, not an
// error, so routing treats a type mismatch as route-not-found.
func (p *PathPattern) Match(path string) (Params, bool) {
	m := p.full.FindStringSubmatch(normalizePath(path))
	if m == nil {
		return nil, false
	}
	return p.convert(m)
}

// MatchPrefix matches the pattern against the beginning of path, returning
// the unconsumed remainder. The remainder is empty or begins with '/', so a
// prefix never splits a path segment.
func (p *PathPattern) MatchPrefix(path string) (Params, string, bool) {
	path = normalizePath(path)
	if p.raw == "/" {
		// Empty prefix: consume nothing.
		return nil, path, true
	}
	loc := p.prefix.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, "", false
	}
	tail := path[loc[1]:]
	if tail != "" && tail[0] != '/' {
		return nil, "", false
	}
	params, ok := p.convert(submatchStrings(path, loc))
	if !ok {
		return nil, "", false
	}
	return params, tail, true
}

func (p *PathPattern) convert(m []string) (Params, bool) {
	if len(p.params) == 0 {
		return nil, true
	}
	params := make(Params, len(p.params))
	for i, spec := range p.params {
		value, err := spec.conv.Convert(m[i+1])
		if err != nil {
			return nil, false
		}
		params[spec.name] = value
	}
	return params, true
}

// URLPath substitutes the given parameters into the template. The provided
// parameter set must exactly equal the required set, and every value must
// satisfy its converter's pattern; violations yield *ParameterMismatchError.
func (p *PathPattern) URLPath(params map[string]interface{}) (string, error) {
	mismatch := &ParameterMismatchError{Route: p.raw}

	required := map[string]bool{}
	for _, spec := range p.params {
		required[spec.name] = true
		if _, ok := params[spec.name]; !ok {
			mismatch.Missing = append(mismatch.Missing, spec.name)
		}
	}
	for name := range params {
		if !required[name] {
			mismatch.Extra = append(mismatch.Extra, name)
		}
	}
	sort.Strings(mismatch.Extra)
	if len(mismatch.Missing) > 0 || len(mismatch.Extra) > 0 {
		return "", mismatch
	}

	path := p.raw
	for _, spec := range p.params {
		value := fmt.Sprint(params[spec.name])
		if !spec.valRe.MatchString(value) {
			mismatch.Invalid = append(mismatch.Invalid, spec.name)
			continue
		}
		path = spec.tokenRe.ReplaceAllLiteralString(path, value)
	}
	if len(mismatch.Invalid) > 0 {
		return "", mismatch
	}
	return path, nil
}

func submatchStrings(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		start, end := loc[2*i], loc[2*i+1]
		if start >= 0 {
			out[i] = s[start:end]
		}
	}
	return out
}

// normalizePath guarantees a leading '/' and strips a single trailing '/',
// which makes "/api/test" and "/api/test/" equivalent for both registration
// and matching.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
