package scraper

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	contentWrapSelector = ".qth-content-wrap dl"

	contactLinkText = "Click to Contact"
	photoLinkText   = "Click Here to View Picture"
)

// ExtractListings parses one listing page. An absent definition list is
// not an error: it means "no results" on a search page or the end of
// pagination on a category page, and yields an empty slice.
//
// The list interleaves dt (title) and dd (body) elements; a dd finalizes
// one listing with the pending dt title.
func ExtractListings(doc *goquery.Document, base *url.URL) []Listing {
	dl := doc.Find(contentWrapSelector).First()
	if dl.Length() == 0 {
		return nil
	}

	var listings []Listing
	title := ""
	dl.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "dt":
			title = strings.TrimSpace(child.Text())
		case "dd":
			if l, ok := listingFromBody(title, child, base); ok {
				listings = append(listings, l)
			}
		}
	})
	return listings
}

func listingFromBody(title string, dd *goquery.Selection, base *url.URL) (Listing, bool) {
	contactHref, ok := linkByText(dd, contactLinkText)
	if title == "" || !ok {
		// A listing without a title or contact link cannot be fed out;
		// skip it rather than emit a broken entry.
		log.Printf("scraper: skipping malformed listing %q", title)
		return Listing{}, false
	}

	text := dd.Text()
	lines := strings.Split(text, "\n")
	if len(lines) > 2 {
		lines = lines[:2]
	}

	l := Listing{
		Title:       title,
		Description: strings.Join(lines, "\n"),
		ContactURL:  resolveRef(base, contactHref),
		// The view page shares the contact page's URL shape; a plain
		// text swap is how the site itself links the two.
		ViewURL: resolveRef(base, strings.ReplaceAll(contactHref, "contact", "view_ad")),
	}

	if photoHref, ok := linkByText(dd, photoLinkText); ok {
		l.PhotoURL = resolveRef(base, photoHref)
	}

	// The metadata tail line is optional by design: when the pattern
	// does not match, the timestamps simply stay unset.
	if meta, ok := ParseListingMeta(text); ok {
		l.Meta = &meta
		published := meta.Submitted
		l.Published = &published
		if !meta.Modified.IsZero() {
			updated := meta.Modified
			l.Updated = &updated
		}
	}

	return l, true
}

// linkByText finds the first child anchor whose visible text is exactly
// want, and returns its href.
func linkByText(s *goquery.Selection, want string) (string, bool) {
	link := s.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return strings.TrimSpace(a.Text()) == want
	}).First()
	if link.Length() == 0 {
		return "", false
	}
	return link.Attr("href")
}

func resolveRef(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
