package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-teetime/internal/clock"
	"github.com/jrsteele09/go-teetime/internal/errors"
)

type recordingSubmitter struct {
	drafts []Draft
	err    error
}

func (r *recordingSubmitter) Submit(_ context.Context, draft Draft) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.drafts = append(r.drafts, draft)
	return "REF12345", nil
}

var (
	course = CourseInfo{CourseID: 1, CourseName: "Pine Valley Golf Club", TeeTime: "9:00 AM", Date: "Saturday, April 12, 2025", Price: "$89"}

	contact = ContactInfo{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Phone: "555-0100"}
	payment = PaymentInfo{CardNumber: "4242 4242 4242 4242", Expiry: "12/27", CVC: "123"}
)

func newWizard(sub Submitter, now *time.Time) *Wizard {
	return NewWizard(sub, WithClock(clock.Func(func() time.Time { return *now })))
}

func TestWizardHappyPath(t *testing.T) {
	now := time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)
	sub := &recordingSubmitter{}
	w := newWizard(sub, &now)

	require.False(t, w.IsOpen())
	w.Open(course)
	require.True(t, w.IsOpen())
	require.Equal(t, StepContactInfo, w.Step())

	require.NoError(t, w.SubmitContact(contact))
	require.Equal(t, StepPayment, w.Step())

	require.NoError(t, w.SubmitPayment(context.Background(), payment))
	require.Equal(t, StepConfirmed, w.Step())
	require.Empty(t, w.FormError())

	conf := w.Confirmation()
	require.NotNil(t, conf)
	require.Equal(t, "REF12345", conf.Reference)
	require.Equal(t, course, conf.Course)
	require.Equal(t, contact, conf.Contact)
	require.Equal(t, now.Add(DefaultConfirmDelay), w.ClosesAt())

	require.Len(t, sub.drafts, 1)
	require.Equal(t, payment, sub.drafts[0].Payment)
	require.Empty(t, w.Draft().Payment.CardNumber)

	// Confirmed is terminal
	require.True(t, errors.Is(w.Back(), errors.ErrInvalidTransition))
	require.True(t, errors.Is(w.SubmitContact(contact), errors.ErrInvalidTransition))
}

func TestWizardValidation(t *testing.T) {
	now := time.Now()
	sub := &recordingSubmitter{}
	w := newWizard(sub, &now)
	w.Open(course)

	err := w.SubmitContact(ContactInfo{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, StepContactInfo, vErr.Step)
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Equal(t, MsgRequiredFields, w.FormError())
	require.Equal(t, StepContactInfo, w.Step())

	// Whitespace-only counts as empty
	err = w.SubmitContact(ContactInfo{FirstName: " ", LastName: "Lee", Email: "a", Phone: "1"})
	require.True(t, errors.As(err, &vErr))

	// The next submit clears the error
	require.NoError(t, w.SubmitContact(contact))
	require.Empty(t, w.FormError())

	err = w.SubmitPayment(context.Background(), PaymentInfo{CardNumber: "4242", Expiry: "12/27"})
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, StepPayment, vErr.Step)
	require.Equal(t, StepPayment, w.Step())
	require.Empty(t, sub.drafts)
}

func TestWizardBackKeepsData(t *testing.T) {
	now := time.Now()
	w := newWizard(&recordingSubmitter{}, &now)
	w.Open(course)

	require.True(t, errors.Is(w.Back(), errors.ErrInvalidTransition))

	require.NoError(t, w.SubmitContact(contact))
	require.NoError(t, w.Back())
	require.Equal(t, StepContactInfo, w.Step())
	require.Equal(t, contact, w.Draft().Contact)
	require.Equal(t, course, w.Draft().Course)
}

func TestWizardCancel(t *testing.T) {
	now := time.Now()
	w := newWizard(&recordingSubmitter{}, &now)
	w.Open(course)
	require.NoError(t, w.SubmitContact(contact))

	w.Cancel()
	require.False(t, w.IsOpen())
	require.Equal(t, StepContactInfo, w.Step())
	require.Equal(t, Draft{}, w.Draft())

	// Closed wizard rejects submits
	require.True(t, errors.Is(w.SubmitContact(contact), errors.ErrBookingClosed))

	// Reopening starts over
	w.Open(course)
	require.Equal(t, StepContactInfo, w.Step())
	require.Empty(t, w.Draft().Contact.FirstName)
}

func TestWizardRefreshClosesAfterDelay(t *testing.T) {
	now := time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)
	w := NewWizard(&recordingSubmitter{},
		WithClock(clock.Func(func() time.Time { return now })),
		WithConfirmDelay(3*time.Second),
	)

	// Nothing to do before confirmation
	require.False(t, w.Refresh(now.Add(time.Hour)))

	w.Open(course)
	require.NoError(t, w.SubmitContact(contact))
	require.NoError(t, w.SubmitPayment(context.Background(), payment))

	require.False(t, w.Refresh(now.Add(2999*time.Millisecond)))
	require.Equal(t, StepConfirmed, w.Step())

	require.True(t, w.Refresh(now.Add(3*time.Second)))
	require.False(t, w.IsOpen())
	require.Equal(t, StepContactInfo, w.Step())
	require.Nil(t, w.Confirmation())
	require.Equal(t, Draft{}, w.Draft())
}

func TestWizardSubmitterFailureStaysOnPayment(t *testing.T) {
	now := time.Now()
	w := newWizard(&recordingSubmitter{err: errors.New("backend down")}, &now)
	w.Open(course)
	require.NoError(t, w.SubmitContact(contact))

	err := w.SubmitPayment(context.Background(), payment)
	require.Error(t, err)
	require.Equal(t, StepPayment, w.Step())
	require.NotEmpty(t, w.FormError())
	require.Nil(t, w.Confirmation())
}

func TestWizardPrefill(t *testing.T) {
	now := time.Now()
	w := newWizard(&recordingSubmitter{}, &now)
	w.Open(course)

	w.Prefill("Ann Marie Lee", "ann@example.com")
	require.Equal(t, ContactInfo{FirstName: "Ann", LastName: "Marie Lee", Email: "ann@example.com"}, w.Draft().Contact)

	// Existing values win
	w.Prefill("Bob", "")
	require.Equal(t, "Ann", w.Draft().Contact.FirstName)
}

func TestLogSubmitter(t *testing.T) {
	ref, err := LogSubmitter{}.Submit(context.Background(), Draft{Course: course, Contact: contact, Payment: payment})
	require.NoError(t, err)
	require.Len(t, ref, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LogSubmitter{}.Submit(ctx, Draft{})
	require.Error(t, err)
}

func TestMaskCard(t *testing.T) {
	require.Equal(t, "••••••••••••4242", MaskCard("4242 4242 4242 4242"))
	require.Equal(t, "•••", MaskCard("123"))
	require.Equal(t, "", MaskCard(""))
}

func TestStepString(t *testing.T) {
	require.Equal(t, "contact", StepContactInfo.String())
	require.Equal(t, "payment", StepPayment.String())
	require.Equal(t, "confirmed", StepConfirmed.String())
	require.Equal(t, "unknown", Step(0).String())
}
