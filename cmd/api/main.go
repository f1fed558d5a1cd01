package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/qthwatch/qthfeeds/internal/api"
	"github.com/qthwatch/qthfeeds/internal/cache"
	"github.com/qthwatch/qthfeeds/internal/config"
	"github.com/qthwatch/qthfeeds/internal/feed"
	"github.com/qthwatch/qthfeeds/internal/fetch"
	"github.com/qthwatch/qthfeeds/internal/scheduler"
	"github.com/qthwatch/qthfeeds/internal/scraper"
)

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

	if cfg.WarmSpec != "" {
		w, err := scheduler.NewWarmer(cfg.WarmSpec, scr)
		if err != nil {
			log.Fatalf("init cache warmer failed: %v", err)
		}
		w.Start()
		defer w.Stop()
		log.Printf("cache warmer scheduled: %s", cfg.WarmSpec)
	}

	r := gin.Default()
	api.NewServer(scr, store, feed.NewBuilder()).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
