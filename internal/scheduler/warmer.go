// Package scheduler runs the optional cache warm job: re-scrape the
// index and every category on a cron spec so user requests hit a warm
// response cache instead of the origin.
package scheduler

import (
	"log"
	"sort"

	"github.com/robfig/cron/v3"

	"github.com/qthwatch/qthfeeds/internal/scraper"
)

type Warmer struct {
	cron    *cron.Cron
	scraper *scraper.Scraper
}

func NewWarmer(spec string, s *scraper.Scraper) (*Warmer, error) {
	c := cron.New()
	w := &Warmer{cron: c, scraper: s}
	if _, err := c.AddFunc(spec, w.runOnce); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Warmer) Start() {
	w.cron.Start()
}

func (w *Warmer) Stop() {
	w.cron.Stop()
}

// RunOnce exposes a single warm pass for manual triggering.
func (w *Warmer) RunOnce() {
	w.runOnce()
}

func (w *Warmer) runOnce() {
	log.Println("start cache warm job...")

	cats, err := w.scraper.Categories()
	if err != nil {
		log.Printf("warm: categories error: %v", err)
		return
	}

	titles := make([]string, 0, len(cats))
	for title := range cats {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	// One origin, so warm sequentially; every page lands in the shared
	// cache either way.
	warmed := 0
	for _, title := range titles {
		listings, err := w.scraper.CategoryListings(cats[title])
		if err != nil {
			log.Printf("warm: %s error: %v", title, err)
			continue
		}
		warmed++
		log.Printf("warm: %s done, %d listings", title, len(listings))
	}

	log.Printf("cache warm job done (%d/%d categories)", warmed, len(cats))
}
