package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages
	RouteIndex    = "/"
	RouteCalendar = "/calendar"
	RouteSearch   = "/search"
	RouteResults  = "/results"
	RouteCourse   = "/course/{id}"

	// Auth modal
	RouteAuth        = "/auth"
	RouteAuthSignIn  = "/auth/signin"
	RouteAuthSignUp  = "/auth/signup"
	RouteAuthSignOut = "/auth/signout"

	// Booking modal
	RouteBooking        = "/booking"
	RouteBookingContact = "/booking/contact"
	RouteBookingPayment = "/booking/payment"
	RouteBookingBack    = "/booking/back"
	RouteBookingCancel  = "/booking/cancel"
	RouteBookingAccount = "/booking/account"

	// API Routes
	RouteAPISession = "/api/session"
	RouteMetrics    = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)
