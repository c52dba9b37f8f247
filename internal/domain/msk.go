package domain

import (
	"strings"
	"time"
)

// MSK is Moscow time, used for schedule input and display.
var MSK = time.FixedZone("MSK", 3*60*60)

const mskDisplayLayout = "2006-01-02 15:04"

var mskInputLayouts = []string{
	"2006-01-02 15:04",
	"02.01.2006 15:04",
}

// ParseMSK parses a wall-clock MSK timestamp. A "T" separator is accepted
// in place of the space.
func ParseMSK(value string) (time.Time, bool) {
	cleaned := strings.Replace(strings.TrimSpace(value), "T", " ", 1)
	for _, layout := range mskInputLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, MSK); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatMSK renders t as MSK wall-clock time.
func FormatMSK(t time.Time) string {
	return t.In(MSK).Format(mskDisplayLayout)
}
