package scraper

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const indexFixture = `
<html><body>
<table>
  <tr><td><b>VIEW BY CATEGORY</b></td></tr>
  <tr>
    <td><a href="c_radio.php">Radios</a></td>
    <td><a href="c_amps.php">Amplifiers</a></td>
  </tr>
  <tr><td><a href="c_antennas.php">Antennas &amp; Towers</a></td></tr>
  <tr><td>QUICK SEARCH</td></tr>
  <tr><td><a href="c_misc.php">After The Marker</a></td></tr>
</table>
</body></html>`

func TestExtractCategoriesStopsAtEndMarker(t *testing.T) {
	cats, err := ExtractCategories(mustDoc(t, indexFixture))
	if err != nil {
		t.Fatalf("ExtractCategories error: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("got %d categories, want 3: %v", len(cats), cats)
	}

	radios, ok := cats["Radios"]
	if !ok || radios.URL != "c_radio.php" {
		t.Fatalf("Radios = %+v ok=%v", radios, ok)
	}
	if _, ok := cats["Antennas & Towers"]; !ok {
		t.Fatalf("entity-escaped title missing: %v", cats)
	}
	if _, ok := cats["After The Marker"]; ok {
		t.Fatalf("links after the QUICK SEARCH row must be excluded")
	}
}

func TestExtractCategoriesAnchorsOnInnermostCell(t *testing.T) {
	// The header sits in a nested table; the outer cell also contains the
	// phrase but its siblings are not category rows.
	nested := `
<html><body>
<table><tr><td>
  <table>
    <tr><td>VIEW BY CATEGORY</td></tr>
    <tr><td><a href="c_radio.php">Radios</a></td></tr>
    <tr><td>QUICK SEARCH</td></tr>
  </table>
</td></tr></table>
</body></html>`

	cats, err := ExtractCategories(mustDoc(t, nested))
	if err != nil {
		t.Fatalf("ExtractCategories error: %v", err)
	}
	if len(cats) != 1 || cats["Radios"].URL != "c_radio.php" {
		t.Fatalf("got %v, want the single Radios entry", cats)
	}
}

func TestExtractCategoriesMissingAnchorIsStructureError(t *testing.T) {
	_, err := ExtractCategories(mustDoc(t, `<html><body><p>redesigned site</p></body></html>`))
	if err == nil {
		t.Fatalf("expected error when the anchor marker is missing")
	}
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("error type = %T, want *StructureError", err)
	}
	if se.Landmark != categoryAnchorMarker {
		t.Fatalf("Landmark = %q", se.Landmark)
	}
}

func TestMergeCategoriesIdempotentAndLastWins(t *testing.T) {
	doc := mustDoc(t, indexFixture)
	first, err := ExtractCategories(doc)
	if err != nil {
		t.Fatalf("ExtractCategories error: %v", err)
	}
	second, _ := ExtractCategories(doc)

	merged := MergeCategories(nil, first)
	merged = MergeCategories(merged, second)
	if !reflect.DeepEqual(merged, first) {
		t.Fatalf("re-merging identical input changed the mapping:\n%v\n%v", merged, first)
	}

	merged = MergeCategories(merged, map[string]Category{
		"Radios": {Title: "Radios", URL: "c_radio_v2.php"},
	})
	if merged["Radios"].URL != "c_radio_v2.php" {
		t.Fatalf("duplicate title should be overwritten by the later entry: %+v", merged["Radios"])
	}
}
