package authclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SignInRequest is the body of POST /auth/signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest is the body of POST /auth/signup
type SignUpRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// User is the optional profile returned by sign-in
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResponse is the success body of both auth endpoints
type TokenResponse struct {
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    ExpiresIn `json:"expiresIn"`
	Message      string    `json:"message,omitempty"`
	User         *User     `json:"user,omitempty"`
}

// ExpiresIn is a token lifetime in seconds. The backend forwards it as a
// string, so both JSON strings and numbers are accepted.
type ExpiresIn int64

func (e *ExpiresIn) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid expiresIn %q", raw)
	}
	*e = ExpiresIn(n)
	return nil
}

// errorBody is the failure body; FastAPI reports errors under "detail"
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// text returns message, else detail when it is a plain string
func (b errorBody) text() string {
	if b.Message != "" {
		return b.Message
	}
	var detail string
	if len(b.Detail) > 0 && json.Unmarshal(b.Detail, &detail) == nil {
		return detail
	}
	return ""
}
