// Package testclient exercises a handler in-process, without a listening
// socket. It wraps net/http/httptest with a request builder and response
// helpers so application tests read as plain request/assert sequences.
package testclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Client drives a handler directly through ServeHTTP. Cookies set by the
// handler are carried into subsequent requests, so session flows can be
// tested end to end.
type Client struct {
	handler http.Handler
	headers http.Header
	cookies []*http.Cookie
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a header that is sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// New creates a client around a handler, typically a *lungo.App.
func New(handler http.Handler, opts ...Option) *Client {
	c := &Client{
		handler: handler,
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption customizes a single request.
type RequestOption func(*http.Request)

// Header sets a header on the request.
func Header(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// Query adds a query parameter to the request URL.
func Query(key, value string) RequestOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
	}
}

// BearerToken sets an Authorization: Bearer header.
func BearerToken(token string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// BasicAuth sets basic-auth credentials.
func BasicAuth(username, password string) RequestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(username, password)
	}
}

// Get issues a GET request.
func (c *Client) Get(path string, opts ...RequestOption) *Response {
	return c.Do(http.MethodGet, path, nil, opts...)
}

// Head issues a HEAD request.
func (c *Client) Head(path string, opts ...RequestOption) *Response {
	return c.Do(http.MethodHead, path, nil, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(path string, opts ...RequestOption) *Response {
	return c.Do(http.MethodDelete, path, nil, opts...)
}

// Options issues an OPTIONS request.
func (c *Client) Options(path string, opts ...RequestOption) *Response {
	return c.Do(http.MethodOptions, path, nil, opts...)
}

// Post issues a POST request with an arbitrary body.
func (c *Client) Post(path string, body io.Reader, opts ...RequestOption) *Response {
	return c.Do(http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with an arbitrary body.
func (c *Client) Put(path string, body io.Reader, opts ...RequestOption) *Response {
	return c.Do(http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request with an arbitrary body.
func (c *Client) Patch(path string, body io.Reader, opts ...RequestOption) *Response {
	return c.Do(http.MethodPatch, path, body, opts...)
}

// PostJSON marshals v and POSTs it with a JSON content type.
func (c *Client) PostJSON(path string, v interface{}, opts ...RequestOption) *Response {
	return c.sendJSON(http.MethodPost, path, v, opts...)
}

// PutJSON marshals v and PUTs it with a JSON content type.
func (c *Client) PutJSON(path string, v interface{}, opts ...RequestOption) *Response {
	return c.sendJSON(http.MethodPut, path, v, opts...)
}

// PostForm URL-encodes values and POSTs them as a form.
func (c *Client) PostForm(path string, values url.Values, opts ...RequestOption) *Response {
	opts = append([]RequestOption{Header("Content-Type", "application/x-www-form-urlencoded")}, opts...)
	return c.Do(http.MethodPost, path, strings.NewReader(values.Encode()), opts...)
}

func (c *Client) sendJSON(method, path string, v interface{}, opts ...RequestOption) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return &Response{err: fmt.Errorf("testclient: marshal body: %w", err)}
	}
	opts = append([]RequestOption{Header("Content-Type", "application/json")}, opts...)
	return c.Do(method, path, bytes.NewReader(data), opts...)
}

// Do issues a request with the given method, path and body.
func (c *Client) Do(method, path string, body io.Reader, opts ...RequestOption) *Response {
	req := httptest.NewRequest(method, path, body)
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	res := rec.Result()
	c.storeCookies(res.Cookies())

	return &Response{rec: rec, res: res}
}

// ClearCookies drops the cookies accumulated from previous responses.
func (c *Client) ClearCookies() {
	c.cookies = nil
}

func (c *Client) storeCookies(set []*http.Cookie) {
	for _, nc := range set {
		replaced := false
		for i, old := range c.cookies {
			if old.Name == nc.Name {
				c.cookies[i] = nc
				replaced = true
				break
			}
		}
		if !replaced {
			c.cookies = append(c.cookies, nc)
		}
	}
}

// Response wraps a recorded response with assertion-friendly accessors.
type Response struct {
	rec *httptest.ResponseRecorder
	res *http.Response
	err error
}

// Err reports a client-side failure, such as a body that could not be
// marshaled. A nil Err does not imply a 2xx status.
func (r *Response) Err() error {
	return r.err
}

// StatusCode returns the recorded status code.
func (r *Response) StatusCode() int {
	if r.rec == nil {
		return 0
	}
	return r.rec.Code
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	if r.rec == nil {
		return http.Header{}
	}
	return r.rec.Header()
}

// Cookies returns the cookies set by the response.
func (r *Response) Cookies() []*http.Cookie {
	if r.res == nil {
		return nil
	}
	return r.res.Cookies()
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	if r.rec == nil {
		return ""
	}
	return r.rec.Body.String()
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte {
	if r.rec == nil {
		return nil
	}
	return r.rec.Body.Bytes()
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	return json.Unmarshal(r.Bytes(), v)
}
