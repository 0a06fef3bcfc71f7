// Package catalog serves the read-only course, tee-time and weather records.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/go-teetime/calendar"
	apperrors "github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/search"
	"gopkg.in/yaml.v3"
)

//go:embed courses.yaml
var coursesYAML []byte

type Weather struct {
	Condition string `yaml:"condition"`
	Temp      string `yaml:"temp"`
	Wind      string `yaml:"wind"`
}

// Icon maps a condition to the icon name used by the templates
func (w Weather) Icon() string {
	switch strings.ToLower(w.Condition) {
	case "sunny":
		return "sun"
	case "partly cloudy", "cloudy":
		return "cloud"
	case "rainy":
		return "cloud-rain"
	default:
		return "sun"
	}
}

type WeatherDay struct {
	Day     string `yaml:"day"`
	Weather `yaml:",inline"`
}

type TeeTime struct {
	Time      string `yaml:"time"`  // HH:MM
	Price     int    `yaml:"price"` // whole dollars
	Available int    `yaml:"available"`
}

// Label renders the tee-off time as "7:30 AM"
func (t TeeTime) Label() string {
	return search.DisplayClock(t.Time)
}

func (t TeeTime) PriceLabel() string {
	return fmt.Sprintf("$%d", t.Price)
}

type AvailableDay struct {
	Date     string    `yaml:"date"` // YYYY-MM-DD
	TeeTimes []TeeTime `yaml:"tee_times"`
}

// Label renders the date as "Friday, April 11, 2025"
func (d AvailableDay) Label() string {
	return search.Query{Date: d.Date}.DisplayDate()
}

type Course struct {
	ID             int            `yaml:"id"`
	Name           string         `yaml:"name"`
	Location       string         `yaml:"location"`
	Rating         float64        `yaml:"rating"`
	Image          string         `yaml:"image"`
	DistanceMiles  int            `yaml:"distance_miles"`
	Featured       bool           `yaml:"featured"`
	Results        bool           `yaml:"results"`
	Description    string         `yaml:"description"`
	Phone          string         `yaml:"phone"`
	Website        string         `yaml:"website"`
	Features       []string       `yaml:"features"`
	Amenities      []string       `yaml:"amenities"`
	Weather        Weather        `yaml:"weather"`
	TeeTimes       []TeeTime      `yaml:"tee_times"`
	WeeklyForecast []WeatherDay   `yaml:"weekly_forecast"`
	AvailableDays  []AvailableDay `yaml:"available_days"`
}

// FromPrice is the cheapest tee time, or 0 when the course lists none
func (c Course) FromPrice() int {
	lowest := 0
	for i, t := range c.TeeTimes {
		if i == 0 || t.Price < lowest {
			lowest = t.Price
		}
	}
	return lowest
}

func (c Course) Distance() string {
	return fmt.Sprintf("%d miles", c.DistanceMiles)
}

// Days returns the bookable days. Courses without a schedule offer their standard tee sheet on date.
func (c Course) Days(date string) []AvailableDay {
	if len(c.AvailableDays) > 0 {
		return c.AvailableDays
	}
	return []AvailableDay{{Date: date, TeeTimes: c.TeeTimes}}
}

// FindTeeTime looks up a tee time on a given day
func (c Course) FindTeeTime(date, hhmm string) (TeeTime, bool) {
	for _, d := range c.Days(date) {
		if d.Date != date {
			continue
		}
		for _, t := range d.TeeTimes {
			if t.Time == hhmm {
				return t, true
			}
		}
	}
	return TeeTime{}, false
}

type SortOrder string

const (
	SortRecommended SortOrder = "recommended"
	SortPrice       SortOrder = "price"
	SortRating      SortOrder = "rating"
	SortDistance    SortOrder = "distance"
)

var SortOrders = []SortOrder{SortRecommended, SortPrice, SortRating, SortDistance}

// ParseSortOrder falls back to the recommended order for unknown values
func ParseSortOrder(s string) SortOrder {
	for _, o := range SortOrders {
		if string(o) == s {
			return o
		}
	}
	return SortRecommended
}

type Repo interface {
	Featured() []Course
	Results(order SortOrder) []Course
	Course(id int) (Course, error)
}

// StaticRepo is an immutable in-memory Repo
type StaticRepo struct {
	courses []Course
	byID    map[int]int
}

var _ Repo = (*StaticRepo)(nil)

// Default loads the embedded course fixture
func Default() (*StaticRepo, error) {
	return Load(bytes.NewReader(coursesYAML))
}

// Load decodes a course fixture and checks that every course has a unique ID, a name and valid tee times
func Load(r io.Reader) (*StaticRepo, error) {
	var doc struct {
		Courses []Course `yaml:"courses"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperrors.Wrapf(err, "[catalog Load] decode")
	}

	repo := &StaticRepo{courses: doc.Courses, byID: make(map[int]int, len(doc.Courses))}
	for i, c := range doc.Courses {
		if c.Name == "" {
			return nil, fmt.Errorf("[catalog Load] course %d has no name", c.ID)
		}
		if _, dup := repo.byID[c.ID]; dup {
			return nil, fmt.Errorf("[catalog Load] duplicate course id %d", c.ID)
		}
		for _, d := range c.AvailableDays {
			if _, err := calendar.ParseDate(d.Date, time.UTC); err != nil {
				return nil, fmt.Errorf("[catalog Load] course %d: invalid date %q", c.ID, d.Date)
			}
			if err := validTeeTimes(d.TeeTimes); err != nil {
				return nil, fmt.Errorf("[catalog Load] course %d on %s: %w", c.ID, d.Date, err)
			}
		}
		if err := validTeeTimes(c.TeeTimes); err != nil {
			return nil, fmt.Errorf("[catalog Load] course %d: %w", c.ID, err)
		}
		repo.byID[c.ID] = i
	}
	return repo, nil
}

func (r *StaticRepo) Featured() []Course {
	return r.filter(func(c Course) bool { return c.Featured })
}

func (r *StaticRepo) Results(order SortOrder) []Course {
	results := r.filter(func(c Course) bool { return c.Results })
	switch order {
	case SortPrice:
		sort.SliceStable(results, func(i, j int) bool { return results[i].FromPrice() < results[j].FromPrice() })
	case SortRating:
		sort.SliceStable(results, func(i, j int) bool { return results[i].Rating > results[j].Rating })
	case SortDistance:
		sort.SliceStable(results, func(i, j int) bool { return results[i].DistanceMiles < results[j].DistanceMiles })
	}
	return results
}

func (r *StaticRepo) Course(id int) (Course, error) {
	i, ok := r.byID[id]
	if !ok {
		return Course{}, apperrors.Wrapf(apperrors.ErrNotFound, "course %d", id)
	}
	return r.courses[i], nil
}

func (r *StaticRepo) filter(keep func(Course) bool) []Course {
	out := make([]Course, 0, len(r.courses))
	for _, c := range r.courses {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func validTeeTimes(teeTimes []TeeTime) error {
	for _, t := range teeTimes {
		if _, err := time.Parse("15:04", t.Time); err != nil {
			return fmt.Errorf("invalid tee time %q", t.Time)
		}
		if t.Price <= 0 {
			return fmt.Errorf("tee time %s has no price", t.Time)
		}
	}
	return nil
}
