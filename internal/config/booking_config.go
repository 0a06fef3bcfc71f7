package config

import "time"

type BookingConfig interface {
	GetBookingConfirmDelay() time.Duration
}

type Booking struct{}

var _ BookingConfig = Booking{}

// GetBookingConfirmDelay is how long the confirmation stays on screen before the booking modal closes
func (Booking) GetBookingConfirmDelay() time.Duration {
	return GetDuration("BOOKING_CONFIRM_DELAY", 3*time.Second)
}
