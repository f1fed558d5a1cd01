package scraper

import (
	"regexp"
	"time"
)

// The metadata line at the bottom of each listing body:
//
//	Listing #123 - Submitted on 01/15/24 by Callsign W1ABC - IP: 1.2.3.4
//	Listing #123 - Submitted on 01/15/24 by Callsign W1ABC, Modified on 02/20/24 - IP: host.example.net
//
// Callsign may carry a portable suffix (W1ABC/2); Website appears only on
// ads that link one.
var listingMetaRE = regexp.MustCompile(
	`Listing #(\d+) - Submitted on (\d{2}/\d{2}/\d{2}) by Callsign ([A-Za-z0-9/]+)` +
		`(?:, Modified on (\d{2}/\d{2}/\d{2}))?` +
		`(?:, Website: (\S+))?` +
		` - IP: (\S+)`)

const metaDateLayout = "01/02/06"

// ParseListingMeta extracts the structured metadata line from a listing
// body. A non-match is a normal outcome (the optional fields just stay
// absent), never an error. Dates resolve to UTC midnight.
func ParseListingMeta(text string) (ListingMeta, bool) {
	m := listingMetaRE.FindStringSubmatch(text)
	if m == nil {
		return ListingMeta{}, false
	}

	submitted, err := time.Parse(metaDateLayout, m[2])
	if err != nil {
		return ListingMeta{}, false
	}

	meta := ListingMeta{
		ListingID: m[1],
		Callsign:  m[3],
		Website:   m[5],
		IP:        m[6],
		Submitted: submitted,
	}
	if m[4] != "" {
		if modified, err := time.Parse(metaDateLayout, m[4]); err == nil {
			meta.Modified = modified
		}
	}
	return meta, true
}
