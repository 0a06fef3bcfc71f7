package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-teetime/calendar"
	"github.com/jrsteele09/go-teetime/catalog"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/search"
)

// calendarPartial is the date picker as rendered by the "calendar" template
type calendarPartial struct {
	Title     string
	Weekdays  [calendar.DaysPerWeek]string
	Weeks     [][]calendar.Cell
	PrevMonth string
	NextMonth string
	Selected  string
}

type indexPage struct {
	basePage
	Query    search.Query
	Errors   map[string]string
	Slots    []search.Slot
	Calendar calendarPartial
	Featured []catalog.Course
	Today    string
}

type resultsPage struct {
	basePage
	Query search.Query
	Sort  catalog.SortOrder
	Sorts []catalog.SortOrder
	Cards []resultCard
}

// resultCard is a course on the results page. TeeTime is set when the course
// has the searched time free on the searched date.
type resultCard struct {
	Course    catalog.Course
	TeeTime   *catalog.TeeTime
	Slots     []resultSlot
	CourseURL string
	BookURL   string
}

// resultSlot is one bookable tee time listed under a result
type resultSlot struct {
	catalog.TeeTime
	Date     string
	BookURL  string
	Selected bool
}

func resultCards(courses []catalog.Course, q search.Query, returnTo string) []resultCard {
	cards := make([]resultCard, 0, len(courses))
	for _, c := range courses {
		card := resultCard{
			Course:    c,
			Slots:     resultSlots(c, q, returnTo),
			CourseURL: fmt.Sprintf("%s?date=%s&time=%s", coursePath(c.ID), url.QueryEscape(q.Date), url.QueryEscape(q.Time)),
		}
		if t, ok := c.FindTeeTime(q.Date, q.Time); ok {
			card.TeeTime = &t
			card.BookURL = bookingURL(c.ID, q.Date, t.Time, returnTo)
		}
		cards = append(cards, card)
	}
	return cards
}

// resultSlots lists the tee times on the searched date. Courses with fixed
// days that exclude it list every day they offer instead.
func resultSlots(c catalog.Course, q search.Query, returnTo string) []resultSlot {
	days := c.Days(q.Date)
	for _, d := range days {
		if d.Date == q.Date {
			days = []catalog.AvailableDay{d}
			break
		}
	}

	var slots []resultSlot
	for _, d := range days {
		for _, t := range d.TeeTimes {
			slots = append(slots, resultSlot{
				TeeTime:  t,
				Date:     d.Date,
				BookURL:  bookingURL(c.ID, d.Date, t.Time, returnTo),
				Selected: d.Date == q.Date && t.Time == q.Time,
			})
		}
	}
	return slots
}

func coursePath(id int) string {
	return "/course/" + strconv.Itoa(id)
}

func bookingURL(courseID int, date, hhmm, returnTo string) string {
	v := url.Values{}
	v.Set("course", strconv.Itoa(courseID))
	v.Set("date", date)
	v.Set("time", hhmm)
	v.Set("return", returnTo)
	return RouteBooking + "?" + v.Encode()
}

type coursePage struct {
	basePage
	Course   catalog.Course
	Query    search.Query
	Days     []catalog.AvailableDay
	ReturnTo string
}

func (s *Server) calendarPartial(view *calendar.View) calendarPartial {
	p := calendarPartial{
		Title:     view.Title(),
		Weekdays:  calendar.Weekdays,
		Weeks:     view.Weeks(s.clock.Now()),
		PrevMonth: calendar.FormatMonth(view.PrevMonth()),
		NextMonth: calendar.FormatMonth(view.NextMonth()),
	}
	if view.Selected != nil {
		p.Selected = calendar.FormatDate(*view.Selected)
	}
	return p
}

// today moves the picker's lower bound along with the clock
func (s *Server) today(view *calendar.View) time.Time {
	today := calendar.StartOfDay(s.clock.Now())
	view.MinDate = &today
	return today
}

// IndexHandler renders the landing page with the search form and featured courses
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := s.base(r, "Book your next tee time")
		if err != nil {
			s.internalError(w, r, err)
			return
		}

		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()

		today := s.today(ui.Calendar)
		params := r.URL.Query()
		if d, err := calendar.ParseDate(params.Get("date"), today.Location()); err == nil && ui.Calendar.Select(d) {
			ui.Calendar.VisibleMonth = calendar.StartOfMonth(d)
		}

		q := search.Query{
			Time:     params.Get("time"),
			Location: params.Get("location"),
		}
		if ui.Calendar.Selected != nil {
			q.Date = calendar.FormatDate(*ui.Calendar.Selected)
		}

		s.renderPage(w, http.StatusOK, pageIndex, s.indexPage(base, ui.Calendar, q, nil))
	}
}

func (s *Server) indexPage(base basePage, view *calendar.View, q search.Query, fieldErrors map[string]string) indexPage {
	return indexPage{
		basePage: base,
		Query:    q,
		Errors:   fieldErrors,
		Slots:    search.TimeSlots,
		Calendar: s.calendarPartial(view),
		Featured: s.catalog.Featured(),
		Today:    search.Query{Date: calendar.FormatDate(s.clock.Now())}.DisplayDate(),
	}
}

// CalendarHandler navigates the search form's date picker. htmx requests get
// the partial, plain requests go back to the landing page.
func (s *Server) CalendarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()

		view := ui.Calendar
		today := s.today(view)
		params := r.URL.Query()

		if m, err := calendar.ParseMonth(params.Get("month"), today.Location()); err == nil {
			view.VisibleMonth = m
		}
		switch params.Get("nav") {
		case "prev":
			view.Prev()
		case "next":
			view.Next()
		}
		if d, err := calendar.ParseDate(params.Get("select"), today.Location()); err == nil {
			view.Select(d)
		}

		if isHTMXRequest(r) {
			s.render(w, http.StatusOK, pageIndex, "calendar", s.calendarPartial(view))
			return
		}

		target := RouteIndex
		if view.Selected != nil {
			target += "?date=" + calendar.FormatDate(*view.Selected)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// SearchHandler validates the search form and redirects to the results page
func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}

		q := search.Query{
			Date:     r.FormValue("date"),
			Time:     r.FormValue("time"),
			Location: r.FormValue("location"),
		}

		err := q.Validate()
		if err == nil {
			redirectSuccess(w, r, q.ResultsURL())
			return
		}

		var vErr *search.ValidationError
		if !errors.As(err, &vErr) {
			s.internalError(w, r, err)
			return
		}

		base, err := s.base(r, "Book your next tee time")
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()
		s.today(ui.Calendar)

		s.renderPage(w, http.StatusUnprocessableEntity, pageIndex, s.indexPage(base, ui.Calendar, q, vErr.Fields))
	}
}

// ResultsHandler lists the courses matching a search
func (s *Server) ResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := s.base(r, "Available tee times")
		if err != nil {
			s.internalError(w, r, err)
			return
		}

		q := search.FromValues(r.URL.Query())
		order := catalog.ParseSortOrder(r.URL.Query().Get("sort"))

		s.renderPage(w, http.StatusOK, pageResults, resultsPage{
			basePage: base,
			Query:    q,
			Sort:     order,
			Sorts:    catalog.SortOrders,
			Cards:    resultCards(s.catalog.Results(order), q, r.URL.RequestURI()),
		})
	}
}

// CourseHandler renders a course's detail page with its tee sheet
func (s *Server) CourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			s.renderError(w, r, http.StatusNotFound, "Course not found")
			return
		}

		course, err := s.catalog.Course(id)
		if errors.Is(err, errors.ErrNotFound) {
			s.renderError(w, r, http.StatusNotFound, "Course not found")
			return
		} else if err != nil {
			s.internalError(w, r, err)
			return
		}

		base, err := s.base(r, course.Name)
		if err != nil {
			s.internalError(w, r, err)
			return
		}

		q := search.FromValues(r.URL.Query())
		s.renderPage(w, http.StatusOK, pageCourse, coursePage{
			basePage: base,
			Course:   course,
			Query:    q,
			Days:     course.Days(q.Date),
			ReturnTo: r.URL.RequestURI(),
		})
	}
}
