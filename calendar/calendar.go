// Package calendar builds the month grid behind the date picker.
//
// A grid always holds six full weeks (42 days) starting on the Sunday on or
// before the first of the visible month, so every month fits and every grid
// ends on a Saturday. Dates are compared as calendar days in the location of
// the visible month.
package calendar

import (
	"time"
)

const (
	GridSize    = 42
	DaysPerWeek = 7

	MonthLayout = "2006-01"
	DateLayout  = "2006-01-02"
)

// Weekdays are the column headers, Sunday first
var Weekdays = [DaysPerWeek]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// Cell is one day of the grid
type Cell struct {
	Date           time.Time
	InCurrentMonth bool
	IsSelected     bool
	IsToday        bool
	IsDisabled     bool
}

// Day is the day-of-month label
func (c Cell) Day() int {
	return c.Date.Day()
}

// View is the state of one date picker: the month shown, the selected day and optional bounds.
type View struct {
	VisibleMonth time.Time
	Selected     *time.Time
	MinDate      *time.Time
	MaxDate      *time.Time
}

// NewView opens a picker on the selected date's month, or on the given month when nothing is selected
func NewView(month time.Time, selected, minDate, maxDate *time.Time) *View {
	v := &View{
		VisibleMonth: StartOfMonth(month),
		MinDate:      minDate,
		MaxDate:      maxDate,
	}
	if selected != nil {
		day := StartOfDay(*selected)
		v.Selected = &day
		v.VisibleMonth = StartOfMonth(day)
	}
	return v
}

// Next shows the following month. The selection is untouched.
func (v *View) Next() {
	v.VisibleMonth = StartOfMonth(v.VisibleMonth).AddDate(0, 1, 0)
}

// Prev shows the preceding month. The selection is untouched.
func (v *View) Prev() {
	v.VisibleMonth = StartOfMonth(v.VisibleMonth).AddDate(0, -1, 0)
}

// Select marks date as selected and reports whether it was accepted. Disabled dates are ignored.
func (v *View) Select(date time.Time) bool {
	if v.IsDisabled(date) {
		return false
	}
	day := StartOfDay(date)
	v.Selected = &day
	return true
}

// IsDisabled reports whether date falls strictly before MinDate's day or strictly after MaxDate's day
func (v *View) IsDisabled(date time.Time) bool {
	loc := v.location()
	day := StartOfDay(date.In(loc))
	if v.MinDate != nil && day.Before(StartOfDay(v.MinDate.In(loc))) {
		return true
	}
	if v.MaxDate != nil && day.After(StartOfDay(v.MaxDate.In(loc))) {
		return true
	}
	return false
}

// Grid returns the 42 cells of the visible month. now decides which cell is today.
func (v *View) Grid(now time.Time) []Cell {
	loc := v.location()
	month := StartOfMonth(v.VisibleMonth)
	start := GridStart(month)
	today := now.In(loc)

	cells := make([]Cell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, Cell{
			Date:           d,
			InCurrentMonth: d.Month() == month.Month() && d.Year() == month.Year(),
			IsSelected:     v.Selected != nil && SameDay(d, v.Selected.In(loc)),
			IsToday:        SameDay(d, today),
			IsDisabled:     v.IsDisabled(d),
		})
	}
	return cells
}

// Weeks splits the grid into rows of seven for rendering
func (v *View) Weeks(now time.Time) [][]Cell {
	cells := v.Grid(now)
	weeks := make([][]Cell, 0, GridSize/DaysPerWeek)
	for i := 0; i < len(cells); i += DaysPerWeek {
		weeks = append(weeks, cells[i:i+DaysPerWeek])
	}
	return weeks
}

// Title is the month heading, e.g. "April 2025"
func (v *View) Title() string {
	return v.VisibleMonth.Format("January 2006")
}

func (v *View) PrevMonth() time.Time {
	return StartOfMonth(v.VisibleMonth).AddDate(0, -1, 0)
}

func (v *View) NextMonth() time.Time {
	return StartOfMonth(v.VisibleMonth).AddDate(0, 1, 0)
}

func (v *View) location() *time.Location {
	if v.VisibleMonth.IsZero() {
		return time.Local
	}
	return v.VisibleMonth.Location()
}

// GridStart returns the Sunday on or before the first day of month's month
func GridStart(month time.Time) time.Time {
	first := StartOfMonth(month)
	return first.AddDate(0, 0, -int(first.Weekday()))
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, ignoring the clock
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(MonthLayout, s, loc)
}

func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
