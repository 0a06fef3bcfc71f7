package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Submitter accepts a completed draft and returns a booking reference
type Submitter interface {
	Submit(ctx context.Context, draft Draft) (string, error)
}

// LogSubmitter records the booking in the log; there is no booking backend
type LogSubmitter struct{}

var _ Submitter = LogSubmitter{}

func (LogSubmitter) Submit(ctx context.Context, draft Draft) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reference := strings.ToUpper(uuid.NewString()[:8])
	log.Info().
		Str("reference", reference).
		Int("course_id", draft.Course.CourseID).
		Str("course", draft.Course.CourseName).
		Str("date", draft.Course.Date).
		Str("tee_time", draft.Course.TeeTime).
		Str("price", draft.Course.Price).
		Str("guest", draft.Contact.FirstName+" "+draft.Contact.LastName).
		Str("email", draft.Contact.Email).
		Str("card", MaskCard(draft.Payment.CardNumber)).
		Msg("Guest booking")
	return reference, nil
}

// MaskCard keeps only the last four digits
func MaskCard(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return strings.Repeat("•", len(digits))
	}
	return strings.Repeat("•", len(digits)-4) + string(digits[len(digits)-4:])
}
