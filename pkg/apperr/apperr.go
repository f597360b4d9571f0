package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NetworkError means the backend never produced a response (refused
// connection, timeout, DNS failure). These are retried only by an explicit
// user action, never silently.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Body holds the raw response body when it
// was JSON; for non-JSON bodies (proxy/gateway error pages) Body is left
// empty so nothing from the page can leak to a user.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// ValidationError is a client-side pre-submission failure. It never reaches
// the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrServiceUnavailable is returned when the backend origin is not
// configured or unreachable in a way the user cannot act on.
var ErrServiceUnavailable = errors.New("service unavailable")

// Category is a user-facing error classification. Raw backend text is never
// shown; every error collapses into one of these.
type Category string

const (
	CategoryVerificationRequired Category = "verification_required"
	CategoryRateLimited          Category = "rate_limited"
	CategoryServiceUnavailable   Category = "service_unavailable"
	CategoryGeneric              Category = "generic"
)

// categoryMessages are the only strings shown for auth-sensitive failures.
var categoryMessages = map[Category]string{
	CategoryVerificationRequired: "Please verify your account before signing in.",
	CategoryRateLimited:          "Too many attempts. Please wait a moment and try again.",
	CategoryServiceUnavailable:   "The service is temporarily unavailable. Please try again later.",
	CategoryGeneric:              "Something went wrong while signing you in. Please try again.",
}

// predicate pairs a category with the substrings that select it. Matching is
// first-match-wins over this ordered list, so order encodes precedence:
// rate-limit detection must run before the generic bucket or a throttled
// sign-in would be misreported as a plain failure.
type predicate struct {
	category   Category
	substrings []string
}

var classifierOrder = []predicate{
	{CategoryVerificationRequired, []string{"verify", "verification", "not verified", "otp required"}},
	{CategoryRateLimited, []string{"rate limit", "too many", "throttle", "429"}},
	{CategoryServiceUnavailable, []string{"unavailable", "bad gateway", "502", "503", "connection refused", "timeout", "no such host"}},
}

// Classify maps an error string from any source into a user-facing category.
// The input is percent-decoded and lowered before matching, since these
// strings frequently arrive via redirect query parameters.
func Classify(raw string) Category {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	lowered := strings.ToLower(decoded)

	for _, p := range classifierOrder {
		for _, sub := range p.substrings {
			if strings.Contains(lowered, sub) {
				return p.category
			}
		}
	}
	return CategoryGeneric
}

// Message returns the display text for a category.
func Message(c Category) string {
	if msg, ok := categoryMessages[c]; ok {
		return msg
	}
	return categoryMessages[CategoryGeneric]
}

// ClassifyError categorizes a typed error. Transport-level failures and a
// missing backend origin are service-unavailable; everything else goes
// through the string classifier.
func ClassifyError(err error) Category {
	if err == nil {
		return CategoryGeneric
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) || errors.Is(err, ErrServiceUnavailable) {
		return CategoryServiceUnavailable
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == 429 {
			return CategoryRateLimited
		}
		if httpErr.Status == 502 || httpErr.Status == 503 || httpErr.Status == 504 {
			return CategoryServiceUnavailable
		}
		return Classify(string(httpErr.Body))
	}

	return Classify(err.Error())
}

// errorBody covers the JSON error shapes the backend is known to produce.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Normalize maps any error to a non-empty human-readable string, using
// fallback when nothing better is available. It never panics and never
// returns backend internals (stack traces, connection strings) verbatim.
func Normalize(err error, fallback string) string {
	if fallback == "" {
		fallback = Message(CategoryGeneric)
	}
	if err == nil {
		return fallback
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr.Message != "" {
		return validationErr.Message
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return Message(CategoryServiceUnavailable)
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return Message(CategoryServiceUnavailable)
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := messageFromBody(httpErr.Body); msg != "" {
			return msg
		}
		return Message(CategoryServiceUnavailable)
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" && looksDisplayable(msg) {
		return msg
	}
	return fallback
}

// messageFromBody extracts a message from the supported error body shapes:
// a bare JSON string, {"error": ...} or {"detail": ...}.
func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var shaped errorBody
	if err := json.Unmarshal(body, &shaped); err == nil {
		if shaped.Error != "" {
			return strings.TrimSpace(shaped.Error)
		}
		if shaped.Detail != "" {
			return strings.TrimSpace(shaped.Detail)
		}
	}
	return ""
}

// looksDisplayable rejects strings that smell like internals rather than a
// message meant for a person.
func looksDisplayable(msg string) bool {
	lowered := strings.ToLower(msg)
	for _, marker := range []string{"goroutine ", "runtime error", ".go:", "dial tcp", "sql:", "panic:"} {
		if strings.Contains(lowered, marker) {
			return false
		}
	}
	return true
}
