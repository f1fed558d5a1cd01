package scraper

import (
	"testing"
	"time"
)

func TestParseListingMetaSubmittedOnly(t *testing.T) {
	meta, ok := ParseListingMeta("Listing #123 - Submitted on 01/15/24 by Callsign W1ABC - IP: 1.2.3.4")
	if !ok {
		t.Fatalf("expected a match")
	}
	if meta.ListingID != "123" || meta.Callsign != "W1ABC" || meta.IP != "1.2.3.4" {
		t.Fatalf("meta = %+v", meta)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !meta.Submitted.Equal(want) {
		t.Fatalf("Submitted = %v, want %v (UTC midnight)", meta.Submitted, want)
	}
	if !meta.Modified.IsZero() {
		t.Fatalf("Modified should be zero: %v", meta.Modified)
	}
	if meta.Website != "" {
		t.Fatalf("Website should be empty: %q", meta.Website)
	}
}

func TestParseListingMetaModified(t *testing.T) {
	meta, ok := ParseListingMeta(
		"Listing #99 - Submitted on 01/15/24 by Callsign W1ABC, Modified on 02/20/24 - IP: 1.2.3.4")
	if !ok {
		t.Fatalf("expected a match")
	}
	want := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	if !meta.Modified.Equal(want) {
		t.Fatalf("Modified = %v, want %v", meta.Modified, want)
	}
}

func TestParseListingMetaWebsiteAndEmbeddedLine(t *testing.T) {
	text := "FT-817 with accessories.\nFirst come first served.\n" +
		"Listing #7 - Submitted on 03/01/24 by Callsign AB1CDE/4, Website: https://ab1cde.example.org - IP: cpe-1-2-3-4.example.net\n"
	meta, ok := ParseListingMeta(text)
	if !ok {
		t.Fatalf("expected a match inside multi-line text")
	}
	if meta.Website != "https://ab1cde.example.org" {
		t.Fatalf("Website = %q", meta.Website)
	}
	if meta.Callsign != "AB1CDE/4" {
		t.Fatalf("Callsign = %q", meta.Callsign)
	}
	if meta.IP != "cpe-1-2-3-4.example.net" {
		t.Fatalf("IP = %q", meta.IP)
	}
}

func TestParseListingMetaMissIsNotAnError(t *testing.T) {
	for _, text := range []string{
		"",
		"just a plain description without the tail line",
		"Listing #123 - Submitted on 2024-01-15 by Callsign W1ABC - IP: 1.2.3.4", // wrong date format
	} {
		if _, ok := ParseListingMeta(text); ok {
			t.Fatalf("unexpected match for %q", text)
		}
	}
}
