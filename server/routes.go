package server

import (
	"net/http"

	"github.com/jrsteele09/go-teetime/metrics"
)

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCalendar, ChainMiddleware(s.CalendarHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSearch, ChainMiddleware(s.SearchHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteResults, ChainMiddleware(s.ResultsHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCourse, ChainMiddleware(s.CourseHandler(), s.HTMLMiddleWare()...))

	// Auth modal
	s.RegisterRouteHandler("GET "+RouteAuth, ChainMiddleware(s.AuthModalHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthSignIn, ChainMiddleware(s.SignInHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthSignUp, ChainMiddleware(s.SignUpHandler(), s.HTMLMiddleWare(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))

	// Booking modal
	s.RegisterRouteHandler("GET "+RouteBooking, ChainMiddleware(s.BookingModalHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteBookingContact, ChainMiddleware(s.BookingContactHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteBookingPayment, ChainMiddleware(s.BookingPaymentHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteBookingBack, ChainMiddleware(s.BookingBackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteBookingCancel, ChainMiddleware(s.BookingCancelHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteBookingAccount, ChainMiddleware(s.BookingAccountHandler(), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))

	// Everything else is a 404 page
	s.RegisterRouteHandler(RouteIndex, ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}

// NotFoundHandler renders the error page for unknown paths
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "Page not found")
	}
}
