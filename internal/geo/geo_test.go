package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"status":"success","country":"Germany","countryCode":"DE","regionName":"Berlin","city":"Berlin","isp":"Example ISP","query":"1.2.3.4"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(base string) *Client {
	return NewClient(ClientConfig{BaseURL: base, Timeout: 2 * time.Second})
}

func TestClientLookup(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls)

	loc, err := newTestClient(srv.URL).Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if loc.Country != "Germany" || loc.City != "Berlin" || loc.ISP != "Example ISP" {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestClientLookupFailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"fail","message":"private range"}`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Lookup(context.Background(), "10.0.0.1"); err == nil {
		t.Error("expected error for fail status")
	}
}

func TestCacheSingleWinner(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls)
	cache := NewCache(newTestClient(srv.URL))

	n := 25
	locs := make([]*Location, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc, err := cache.Lookup(context.Background(), "1.2.3.4")
			if err != nil {
				t.Errorf("Lookup: %v", err)
				return
			}
			locs[i] = loc
		}(i)
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("outbound calls = %d, want 1", got)
	}
	for i, loc := range locs {
		if loc != locs[0] {
			t.Fatalf("caller %d observed a different value", i)
		}
	}
	if cache.Size() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Size())
	}
}

func TestCacheDistinctKeys(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls)
	cache := NewCache(newTestClient(srv.URL))

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"} {
		if _, err := cache.Lookup(context.Background(), ip); err != nil {
			t.Fatalf("Lookup(%s): %v", ip, err)
		}
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("outbound calls = %d, want 2", got)
	}
	if cache.Size() != 2 {
		t.Errorf("cache size = %d, want 2", cache.Size())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			fmt.Fprintf(w, `{"status":"fail","message":"try later"}`)
			return
		}
		fmt.Fprintf(w, `{"status":"success","country":"Germany","query":"1.2.3.4"}`)
	}))
	defer srv.Close()

	cache := NewCache(newTestClient(srv.URL))

	if _, err := cache.Lookup(context.Background(), "1.2.3.4"); err == nil {
		t.Fatal("first lookup should fail")
	}
	if cache.Size() != 0 {
		t.Fatalf("failed lookup cached, size = %d", cache.Size())
	}

	loc, err := cache.Lookup(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if loc.Country != "Germany" {
		t.Errorf("unexpected location: %+v", loc)
	}
}
