package main

import (
	"fmt"
	"log"
	"sort"

	"github.com/qthwatch/qthfeeds/internal/cache"
	"github.com/qthwatch/qthfeeds/internal/config"
	"github.com/qthwatch/qthfeeds/internal/fetch"
	"github.com/qthwatch/qthfeeds/internal/scraper"
)

// One-shot scrape of every category, printed to stdout. Handy for
// checking the extractors against the live site without running the
// server; it also leaves the cache primed.
func main() {
	cfg := config.Load()

	store, err := cache.Open(cache.Options{
		Path:      cfg.CachePath,
		RedisAddr: cfg.CacheRedisAddr,
		TTL:       cfg.CacheTTL,
	})
	if err != nil {
		log.Fatalf("init cache failed: %v", err)
	}
	defer store.Close()

	client, err := fetch.New(store, cfg.BaseURL, cfg.CacheTTL, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("init fetcher failed: %v", err)
	}
	scr := scraper.New(client, cfg.EntriesPerCategory)

	cats, err := scr.Categories()
	if err != nil {
		log.Fatalf("scrape categories failed: %v", err)
	}
	log.Printf("found %d categories", len(cats))

	titles := make([]string, 0, len(cats))
	for title := range cats {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		listings, err := scr.CategoryListings(cats[title])
		if err != nil {
			log.Printf("scrape %s error: %v", title, err)
			continue
		}
		fmt.Printf("%s (%d listings)\n", title, len(listings))
		for _, l := range listings {
			fmt.Printf("  - %s\n    %s\n", l.Title, l.ViewURL)
		}
	}
}
