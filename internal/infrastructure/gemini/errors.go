package gemini

import "fmt"

// Credentials is the Google cookie pair that authenticates a web session.
type Credentials struct {
	PSID   string `json:"psid"`
	PSIDTS string `json:"psidts"`
}

// AuthError reports that Gemini rejected the session cookies. A handle that
// produced one is dead and must be rebuilt from fresh credentials.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "gemini session rejected: " + e.Reason
}

// UnavailableError reports a transport failure or an unusable response from
// the Gemini backend. The session itself may still be valid.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gemini backend unavailable: %s: %v", e.Reason, e.Err)
	}
	return "gemini backend unavailable: " + e.Reason
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
