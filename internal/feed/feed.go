// Package feed assembles scraped listings into Atom documents.
package feed

import (
	"time"

	"github.com/gorilla/feeds"

	"github.com/qthwatch/qthfeeds/internal/scraper"
)

// Info is the feed-level identity: one per category or search query.
type Info struct {
	ID          string
	Title       string
	Link        string
	Description string
}

// CategoryInfo derives the feed identity for a category.
func CategoryInfo(cat scraper.Category, link string) Info {
	return Info{
		ID:          link,
		Title:       "QTH Classifieds - " + cat.Title,
		Link:        link,
		Description: cat.Title,
	}
}

// SearchInfo derives the feed identity for a keyword search.
func SearchInfo(keyword, link string) Info {
	return Info{
		ID:          link,
		Title:       "QTH Classifieds - Search: " + keyword,
		Link:        link,
		Description: "Search results for " + keyword,
	}
}

type Builder struct {
	// Now stamps entries that carry no modification date. Overridable in
	// tests.
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

// Build produces the Atom document: one entry per listing in source
// order, entry id = view URL, an alternate link to the view page and a
// related link to the contact page.
//
// Entries without a parsed modification date get updated = build time.
// The upstream feed generator behaved the same way (its serializer
// defaulted updated to "now"), and feed readers key off it for
// resurfacing, so the behavior is kept on purpose.
func (b *Builder) Build(info Info, listings []scraper.Listing) *feeds.AtomFeed {
	now := b.Now().UTC()

	af := &feeds.AtomFeed{
		Xmlns:    "http://www.w3.org/2005/Atom",
		Id:       info.ID,
		Title:    info.Title,
		Subtitle: info.Description,
		Link:     &feeds.AtomLink{Href: info.Link, Rel: "self"},
		Updated:  now.Format(time.RFC3339),
	}

	for _, l := range listings {
		updated := now
		if l.Updated != nil {
			updated = l.Updated.UTC()
		}

		entry := &feeds.AtomEntry{
			Id:      l.ViewURL,
			Title:   l.Title,
			Updated: updated.Format(time.RFC3339),
			Links: []feeds.AtomLink{
				{Href: l.ViewURL, Rel: "alternate"},
				{Href: l.ContactURL, Rel: "related"},
			},
			Summary: &feeds.AtomSummary{Content: l.Description, Type: "text"},
		}
		if l.Published != nil {
			entry.Published = l.Published.UTC().Format(time.RFC3339)
		}
		af.Entries = append(af.Entries, entry)
	}

	return af
}

// Atom serializes the document, XML header included.
func Atom(af *feeds.AtomFeed) (string, error) {
	return feeds.ToXML(af)
}
