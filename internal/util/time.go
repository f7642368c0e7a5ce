package util

import (
	"fmt"
	"time"
)

var jstLocation *time.Location

func init() {
	var err error
	jstLocation, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		jstLocation = time.FixedZone("JST", 9*60*60)
	}
}

func JST() *time.Location {
	return jstLocation
}

func ToJST(t time.Time) time.Time {
	return t.In(jstLocation)
}

func FormatJST(t time.Time, layout string) string {
	return t.In(jstLocation).Format(layout)
}

// ParseISODate accepts the CMS date formats: full RFC 3339 timestamps and bare
// calendar dates, the latter interpreted in JST.
func ParseISODate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, jstLocation); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", value)
}
