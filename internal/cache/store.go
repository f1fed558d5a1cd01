package cache

import "time"

// Entry is one cached origin response, keyed by the fully-resolved URL
// (query string included).
type Entry struct {
	URL         string `gorm:"primaryKey;size:1024" json:"url"`
	Status      int    `json:"status"`
	ContentType string `gorm:"size:128" json:"contentType"`
	Body        []byte `json:"-"`

	FetchedAt time.Time `gorm:"index" json:"fetchedAt"`
}

// Store is a durable URL -> response cache. Entries survive process
// restarts; freshness is decided by the caller (the caching transport)
// against Entry.FetchedAt.
type Store interface {
	Get(url string) (*Entry, bool, error)
	Set(e *Entry) error

	// URLs and Count back the /cache diagnostic endpoint.
	URLs() ([]string, error)
	Count() (int64, error)

	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Path of the SQLite cache file. Used when RedisAddr is empty.
	Path string
	// RedisAddr switches the backend to Redis when non-empty.
	RedisAddr string
	// TTL is only enforced server-side by the Redis backend; the SQLite
	// backend keeps stale rows and relies on the transport's check.
	TTL time.Duration
}

// Open picks the backend from Options.
func Open(opts Options) (Store, error) {
	if opts.RedisAddr != "" {
		return OpenRedis(opts.RedisAddr, opts.TTL)
	}
	return OpenSQLite(opts.Path)
}
