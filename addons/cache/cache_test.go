package cache_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildwithgo/lungo"
	"github.com/buildwithgo/lungo/addons/cache"
)

func TestCachePage(t *testing.T) {
	app := lungo.New()
	store := cache.NewMemoryCache()
	defer store.Close()

	calls := 0
	app.GET("/time", func(c *lungo.Context) error {
		calls++
		return c.String(http.StatusOK, time.Now().Format(time.RFC3339Nano))
	}, lungo.WithMiddleware(cache.CachePage(store, time.Second)))

	server := httptest.NewServer(app)
	defer server.Close()
	client := server.Client()

	resp, err := client.Get(server.URL + "/time")
	if err != nil {
		t.Fatal(err)
	}
	first := readBody(resp)

	resp, err = client.Get(server.URL + "/time")
	if err != nil {
		t.Fatal(err)
	}
	second := readBody(resp)

	if first != second {
		t.Errorf("cache miss on second request: %s vs %s", first, second)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Error("expected X-Cache: HIT header")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()

	store.Set("a", 1, 10*time.Millisecond)
	store.Set("b", 2, 0)

	if _, ok := store.Get("a"); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := store.Get("a"); ok {
		t.Error("expired entry still present")
	}
	if v, ok := store.Get("b"); !ok || v != 2 {
		t.Error("zero-ttl entry should not expire")
	}

	store.Flush()
	if _, ok := store.Get("b"); ok {
		t.Error("entry survived Flush")
	}
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	buf, _ := io.ReadAll(resp.Body)
	return string(buf)
}
