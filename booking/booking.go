package booking

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-teetime/internal/clock"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/metrics"
)

// DefaultConfirmDelay is how long the confirmation stays on screen
const DefaultConfirmDelay = 3 * time.Second

// MsgRequiredFields is shown when a step is submitted with empty fields
const MsgRequiredFields = "Please fill in all required fields"

// Step is a wizard state
type Step int

const (
	StepContactInfo Step = iota + 1
	StepPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepContactInfo:
		return "contact"
	case StepPayment:
		return "payment"
	case StepConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// CourseInfo describes the tee time being booked
type CourseInfo struct {
	CourseID   int
	CourseName string
	TeeTime    string // display label, e.g. "9:00 AM"
	Date       string // display label
	Price      string // display label, e.g. "$89"
	Players    int
}

type ContactInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (c ContactInfo) complete() bool {
	return c.FirstName != "" && c.LastName != "" && c.Email != "" && c.Phone != ""
}

type PaymentInfo struct {
	CardNumber string
	Expiry     string
	CVC        string
}

func (p PaymentInfo) complete() bool {
	return p.CardNumber != "" && p.Expiry != "" && p.CVC != ""
}

// Draft is the booking being assembled by the wizard
type Draft struct {
	Course  CourseInfo
	Contact ContactInfo
	Payment PaymentInfo
}

// Confirmation is what the confirmed step shows
type Confirmation struct {
	Reference   string
	Course      CourseInfo
	Contact     ContactInfo
	ConfirmedAt time.Time
}

// ValidationError reports a step submitted with missing fields
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

// Wizard is the per-browser booking state machine: ContactInfo, Payment, Confirmed.
// It is not safe for concurrent use; callers serialize access per browser.
type Wizard struct {
	submitter    Submitter
	clock        clock.Clock
	confirmDelay time.Duration

	open         bool
	step         Step
	draft        Draft
	formError    string
	confirmation *Confirmation
}

// WizardOption defines a function type to modify the Wizard instance.
type WizardOption func(*Wizard)

// WithClock sets the clock used to stamp confirmations
func WithClock(c clock.Clock) WizardOption {
	return func(w *Wizard) {
		w.clock = c
	}
}

// WithConfirmDelay sets how long the confirmation is shown before the wizard closes
func WithConfirmDelay(d time.Duration) WizardOption {
	return func(w *Wizard) {
		w.confirmDelay = d
	}
}

// NewWizard creates a closed wizard
func NewWizard(submitter Submitter, options ...WizardOption) *Wizard {
	w := &Wizard{
		submitter:    submitter,
		clock:        &clock.DefaultClock{},
		confirmDelay: DefaultConfirmDelay,
		step:         StepContactInfo,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Open starts a booking for the given tee time. Reopening always starts at ContactInfo.
func (w *Wizard) Open(course CourseInfo) {
	w.reset()
	w.open = true
	w.draft.Course = course
}

func (w *Wizard) IsOpen() bool {
	return w.open
}

func (w *Wizard) Step() Step {
	return w.step
}

func (w *Wizard) Draft() Draft {
	return w.draft
}

// FormError is the message from the last failed submit, cleared by the next one
func (w *Wizard) FormError() string {
	return w.formError
}

func (w *Wizard) Confirmation() *Confirmation {
	return w.confirmation
}

// ClosesAt reports when a confirmed wizard closes itself
func (w *Wizard) ClosesAt() time.Time {
	if w.confirmation == nil {
		return time.Time{}
	}
	return w.confirmation.ConfirmedAt.Add(w.confirmDelay)
}

// Prefill fills empty contact fields, used when booking with an account
func (w *Wizard) Prefill(displayName, email string) {
	first, last, _ := strings.Cut(strings.TrimSpace(displayName), " ")
	if w.draft.Contact.FirstName == "" {
		w.draft.Contact.FirstName = first
	}
	if w.draft.Contact.LastName == "" {
		w.draft.Contact.LastName = strings.TrimSpace(last)
	}
	if w.draft.Contact.Email == "" {
		w.draft.Contact.Email = strings.TrimSpace(email)
	}
}

// SubmitContact validates the contact step and moves to Payment
func (w *Wizard) SubmitContact(contact ContactInfo) error {
	if err := w.expect(StepContactInfo); err != nil {
		return err
	}
	w.formError = ""

	contact = ContactInfo{
		FirstName: strings.TrimSpace(contact.FirstName),
		LastName:  strings.TrimSpace(contact.LastName),
		Email:     strings.TrimSpace(contact.Email),
		Phone:     strings.TrimSpace(contact.Phone),
	}
	w.draft.Contact = contact
	if !contact.complete() {
		return w.fail(StepContactInfo)
	}

	w.step = StepPayment
	return nil
}

// SubmitPayment validates the payment step, hands the draft to the submitter and confirms
func (w *Wizard) SubmitPayment(ctx context.Context, payment PaymentInfo) error {
	if err := w.expect(StepPayment); err != nil {
		return err
	}
	w.formError = ""

	payment = PaymentInfo{
		CardNumber: strings.TrimSpace(payment.CardNumber),
		Expiry:     strings.TrimSpace(payment.Expiry),
		CVC:        strings.TrimSpace(payment.CVC),
	}
	if !payment.complete() {
		return w.fail(StepPayment)
	}
	w.draft.Payment = payment

	reference, err := w.submitter.Submit(ctx, w.draft)
	if err != nil {
		metrics.IncBooking(metrics.BookingFailed)
		w.formError = "An unexpected error occurred. Please try again."
		return errors.Wrapf(err, "[Wizard.SubmitPayment] submit")
	}

	w.confirmation = &Confirmation{
		Reference:   reference,
		Course:      w.draft.Course,
		Contact:     w.draft.Contact,
		ConfirmedAt: w.clock.Now(),
	}
	// Card details are not kept past submission
	w.draft.Payment = PaymentInfo{}
	w.step = StepConfirmed
	metrics.IncBooking(metrics.BookingConfirmed)
	return nil
}

// Back returns from Payment to ContactInfo keeping the entered data
func (w *Wizard) Back() error {
	if err := w.expect(StepPayment); err != nil {
		return err
	}
	w.formError = ""
	w.step = StepContactInfo
	return nil
}

// Cancel closes the wizard from any state and discards the draft
func (w *Wizard) Cancel() {
	if w.open && w.step != StepConfirmed {
		metrics.IncBooking(metrics.BookingCancelled)
	}
	w.reset()
}

// Refresh closes a confirmed wizard once the confirm delay has elapsed. It reports whether it closed.
func (w *Wizard) Refresh(now time.Time) bool {
	if !w.open || w.step != StepConfirmed {
		return false
	}
	if now.Before(w.ClosesAt()) {
		return false
	}
	w.reset()
	return true
}

func (w *Wizard) expect(step Step) error {
	if !w.open {
		return errors.Wrapf(errors.ErrBookingClosed, "[Wizard] expected step %s", step)
	}
	if w.step != step {
		return errors.Wrapf(errors.ErrInvalidTransition, "[Wizard] at step %s, expected %s", w.step, step)
	}
	return nil
}

func (w *Wizard) fail(step Step) error {
	w.formError = MsgRequiredFields
	return &ValidationError{Step: step, Message: MsgRequiredFields}
}

func (w *Wizard) reset() {
	w.open = false
	w.step = StepContactInfo
	w.draft = Draft{}
	w.formError = ""
	w.confirmation = nil
}
