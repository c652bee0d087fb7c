package services

import (
	"errors"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// listingLocation is the zone wizard dates and times are entered in
var listingLocation = loadListingLocation()

func loadListingLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}

// CombineDateTime joins a YYYY-MM-DD date and an HH:MM time into an instant.
// An empty time means midnight.
func CombineDateTime(date, clock string) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	d, err := time.ParseInLocation(dateLayout, date, listingLocation)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	if clock == "" {
		return d.UTC(), nil
	}

	c, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, errInvalidTime
	}

	combined := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, listingLocation)
	return combined.UTC(), nil
}

// SplitDateTime renders an instant back into the wizard's date and time strings
func SplitDateTime(t time.Time) (string, string) {
	if t.IsZero() {
		return "", ""
	}
	local := t.In(listingLocation)
	return local.Format(dateLayout), local.Format(timeLayout)
}

// SplitOptional is SplitDateTime for nullable instants
func SplitOptional(t *time.Time) (string, string) {
	if t == nil {
		return "", ""
	}
	return SplitDateTime(*t)
}
