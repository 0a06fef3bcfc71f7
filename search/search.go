// Package search carries the tee-time search between the search form and the results page.
package search

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/go-teetime/calendar"
	apperrors "github.com/jrsteele09/go-teetime/internal/errors"
)

const (
	ResultsPath = "/results"

	// Fallbacks used by the results page when a parameter is missing
	DefaultDate     = "2025-04-12"
	DefaultTime     = "09:00"
	DefaultLocation = "Philadelphia, PA"

	timeLayout = "15:04"
)

// Slot is one selectable tee-off time on the search form
type Slot struct {
	Value string
	Label string
}

// TimeSlots are the hourly times offered on the search form
var TimeSlots = func() []Slot {
	slots := make([]Slot, 0, 11)
	for h := 6; h <= 16; h++ {
		t := time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC)
		slots = append(slots, Slot{Value: t.Format(timeLayout), Label: t.Format("3:04 PM")})
	}
	return slots
}()

type Query struct {
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
	Location string
}

// FromValues reads a query from URL parameters, filling each missing value with its fallback
func FromValues(values url.Values) Query {
	q := Query{
		Date:     values.Get("date"),
		Time:     values.Get("time"),
		Location: values.Get("location"),
	}
	if q.Date == "" {
		q.Date = DefaultDate
	}
	if q.Time == "" {
		q.Time = DefaultTime
	}
	if q.Location == "" {
		q.Location = DefaultLocation
	}
	return q
}

// ResultsURL encodes the query as the results path with date, time and location parameters in that order
func (q Query) ResultsURL() string {
	var b strings.Builder
	b.WriteString(ResultsPath)
	b.WriteString("?date=")
	b.WriteString(url.QueryEscape(q.Date))
	b.WriteString("&time=")
	b.WriteString(url.QueryEscape(q.Time))
	b.WriteString("&location=")
	b.WriteString(url.QueryEscape(q.Location))
	return b.String()
}

// ValidationError holds one message per invalid form field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

// Validate checks the submitted search form. Past days are only disabled in
// the date picker, so any well formed date is accepted here.
func (q Query) Validate() error {
	fields := map[string]string{}

	if _, err := calendar.ParseDate(q.Date, time.UTC); err != nil {
		fields["date"] = "Please select a date."
	}

	if !isSlot(q.Time) {
		fields["time"] = "Please select a time."
	}

	if strings.TrimSpace(q.Location) == "" {
		fields["location"] = "Please enter a location."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// DisplayDate renders the date as "Saturday, April 12, 2025", or returns it unchanged if it cannot be parsed
func (q Query) DisplayDate() string {
	d, err := calendar.ParseDate(q.Date, time.UTC)
	if err != nil {
		return q.Date
	}
	return d.Format("Monday, January 2, 2006")
}

// DisplayTime renders the time as "9:00 AM", or returns it unchanged if it cannot be parsed
func (q Query) DisplayTime() string {
	return DisplayClock(q.Time)
}

// DisplayClock turns "13:30" into "1:30 PM"
func DisplayClock(hhmm string) string {
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}

func isSlot(value string) bool {
	for _, s := range TimeSlots {
		if s.Value == value {
			return true
		}
	}
	return false
}
