package cache

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// FromCacheHeader marks responses that were served without touching the
// origin.
const FromCacheHeader = "X-From-Cache"

// Transport is a caching http.RoundTripper. GET responses are served from
// the Store while younger than TTL; everything else passes through.
//
// A miss is resolved as one atomic fetch-if-absent per URL: concurrent
// requests for the same key share a single origin round trip through
// singleflight instead of racing check-then-write.
type Transport struct {
	Base  http.RoundTripper
	Store Store
	TTL   time.Duration

	// Now is overridable in tests.
	Now func() time.Time

	group singleflight.Group
}

func NewTransport(store Store, ttl time.Duration) *Transport {
	return &Transport{
		Base:  http.DefaultTransport,
		Store: store,
		TTL:   ttl,
		Now:   time.Now,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.Base.RoundTrip(req)
	}

	key := req.URL.String()
	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		return t.lookup(req, key)
	})
	if err != nil {
		return nil, err
	}

	res := v.(*lookupResult)
	resp := &http.Response{
		StatusCode:    res.entry.Status,
		Status:        http.StatusText(res.entry.Status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(res.entry.Body)),
		ContentLength: int64(len(res.entry.Body)),
		Request:       req,
	}
	if res.entry.ContentType != "" {
		resp.Header.Set("Content-Type", res.entry.ContentType)
	}
	if res.fromCache {
		resp.Header.Set(FromCacheHeader, "1")
	}
	return resp, nil
}

type lookupResult struct {
	entry     *Entry
	fromCache bool
}

func (t *Transport) lookup(req *http.Request, key string) (*lookupResult, error) {
	e, ok, err := t.Store.Get(key)
	if err != nil {
		log.Printf("cache: get %s error: %v", key, err)
	} else if ok && t.Now().Sub(e.FetchedAt) < t.TTL {
		return &lookupResult{entry: e, fromCache: true}, nil
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	fresh := &Entry{
		URL:         key,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   t.Now(),
	}
	// Only successful responses are worth keeping for a whole TTL window.
	if resp.StatusCode == http.StatusOK {
		if err := t.Store.Set(fresh); err != nil {
			log.Printf("cache: set %s error: %v", key, err)
		}
	}
	return &lookupResult{entry: fresh}, nil
}
