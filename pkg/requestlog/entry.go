package requestlog

import "time"

// Entry captures one intercepted call.
type Entry struct {
	// ID is a unique, time-ordered identifier for the entry.
	ID string `json:"id"`

	// Timestamp is when the call was intercepted.
	Timestamp time.Time `json:"timestamp"`

	Method      string `json:"method"`
	Host        string `json:"host"`
	Path        string `json:"path"`
	QueryString string `json:"queryString,omitempty"`

	// Matched reports whether a registered route answered the call.
	Matched bool `json:"matched"`

	// FixtureID is the id of the fixture that answered, if any.
	FixtureID string `json:"fixtureId,omitempty"`

	// Branch is the Rule table consulted (combined, first, second, default).
	Branch string `json:"branch,omitempty"`

	// Hit reports whether the consulted table had an entry.
	Hit bool `json:"hit"`

	// StatusCode is the status returned; zero for failed calls.
	StatusCode int `json:"statusCode,omitempty"`

	// Error is the failure returned to the caller, if any.
	Error string `json:"error,omitempty"`
}
