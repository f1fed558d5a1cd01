// Package scraper extracts categories and listings from the swap site's
// HTML. All traversal is anchored on fixed landmarks of the page layout;
// when a landmark disappears the extractors fail loudly with a
// StructureError instead of returning partial data.
package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qthwatch/qthfeeds/internal/fetch"
)

const (
	indexPath  = "index.php"
	searchPath = "search_results.php"
)

// ErrUnknownCategory is returned by lookups for a category title the
// index page does not list. The HTTP layer maps it to a 404.
var ErrUnknownCategory = errors.New("unknown category")

// StructureError means an expected HTML landmark is missing, i.e. the
// upstream site changed its layout.
type StructureError struct {
	Landmark string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("page structure changed: %q not found", e.Landmark)
}

// Category is one entry of the site's "view by category" table.
type Category struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListingMeta is the structured tail line of a listing description,
// e.g. "Listing #123 - Submitted on 01/15/24 by Callsign W1ABC - IP: ...".
type ListingMeta struct {
	ListingID string
	Callsign  string
	Website   string // empty when the ad links no site
	IP        string
	Submitted time.Time
	Modified  time.Time // zero when the ad was never edited
}

// Listing is one classified ad.
type Listing struct {
	Title       string
	Description string
	ContactURL  string
	ViewURL     string
	PhotoURL    string // empty when the ad has no picture link

	// Published/Updated come from the metadata line and are nil when it
	// failed to parse.
	Published *time.Time
	Updated   *time.Time

	Meta *ListingMeta
}

type Scraper struct {
	client             *fetch.Client
	entriesPerCategory int
}

func New(client *fetch.Client, entriesPerCategory int) *Scraper {
	if entriesPerCategory <= 0 {
		entriesPerCategory = 20
	}
	return &Scraper{client: client, entriesPerCategory: entriesPerCategory}
}

// Categories scrapes the index page and returns a fresh snapshot of the
// category table. Callers that want the accumulate-across-calls behavior
// merge snapshots with MergeCategories.
func (s *Scraper) Categories() (map[string]Category, error) {
	doc, err := s.client.Document(indexPath, nil)
	if err != nil {
		return nil, err
	}
	return ExtractCategories(doc)
}

// MergeCategories merges src into dst with last-wins semantics on
// duplicate titles and returns dst.
func MergeCategories(dst, src map[string]Category) map[string]Category {
	if dst == nil {
		dst = make(map[string]Category, len(src))
	}
	for title, cat := range src {
		dst[title] = cat
	}
	return dst
}

// CategoryListings pages through a category (page=1,2,3,...) until the
// configured per-category maximum is reached or a page comes back empty.
// It may return up to one page's worth beyond the maximum; it never
// requests a page after seeing an empty one.
func (s *Scraper) CategoryListings(cat Category) ([]Listing, error) {
	var listings []Listing
	for page := 1; len(listings) < s.entriesPerCategory; page++ {
		doc, err := s.client.Document(cat.URL, url.Values{"page": {strconv.Itoa(page)}})
		if err != nil {
			return nil, err
		}
		batch := ExtractListings(doc, s.client.BaseURL())
		if len(batch) == 0 {
			break
		}
		listings = append(listings, batch...)
	}
	return listings, nil
}

// Search runs a keyword search over titles and descriptions and parses
// the single result page with the same listing extractor.
func (s *Scraper) Search(keyword string) ([]Listing, error) {
	doc, err := s.client.Document(searchPath, searchParams(keyword))
	if err != nil {
		return nil, err
	}
	return ExtractListings(doc, s.client.BaseURL()), nil
}

// SearchURL returns the absolute URL of the search result page, used as
// the feed identity for search feeds.
func (s *Scraper) SearchURL(keyword string) string {
	u, err := s.client.Resolve(searchPath, searchParams(keyword))
	if err != nil {
		return searchPath
	}
	return u
}

func searchParams(keyword string) url.Values {
	return url.Values{
		"keyword":      {keyword},
		"search_scope": {"titles_descriptions"},
	}
}

// AbsoluteURL resolves a scraped href against the site base.
func (s *Scraper) AbsoluteURL(ref string) string {
	u, err := s.client.Resolve(ref, nil)
	if err != nil {
		return ref
	}
	return u
}
