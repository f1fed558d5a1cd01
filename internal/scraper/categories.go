package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Landmarks of the index page. The category links sit in the table rows
// between these two phrases.
const (
	categoryAnchorMarker = "VIEW BY CATEGORY"
	categoryEndMarker    = "QUICK SEARCH"
)

// ExtractCategories walks the index page's category table: anchor on the
// cell containing the "VIEW BY CATEGORY" header, then collect every link
// from the following sibling rows until the "QUICK SEARCH" row.
func ExtractCategories(doc *goquery.Document) (map[string]Category, error) {
	anchor := findCellWithText(doc, categoryAnchorMarker)
	if anchor.Length() == 0 {
		return nil, &StructureError{Landmark: categoryAnchorMarker}
	}

	categories := make(map[string]Category)
	for row := anchor.Parent().Next(); row.Length() > 0; row = row.Next() {
		if strings.Contains(row.Text(), categoryEndMarker) {
			break
		}
		row.Find("a").Each(func(_ int, link *goquery.Selection) {
			title := strings.TrimSpace(link.Text())
			href, ok := link.Attr("href")
			if title == "" || !ok || href == "" {
				return
			}
			// last wins on duplicate titles
			categories[title] = Category{Title: title, URL: href}
		})
	}
	return categories, nil
}

// findCellWithText returns the innermost td whose text contains marker.
// Nested tables mean outer cells also "contain" the phrase; the innermost
// one is the actual header cell the sibling walk must start from.
func findCellWithText(doc *goquery.Document, marker string) *goquery.Selection {
	contains := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), marker)
	}
	return doc.Find("td").
		FilterFunction(contains).
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find("td").FilterFunction(contains).Length() == 0
		}).
		First()
}
