// Package wire holds the DTOs spoken by the remote commerce API and the
// translation between their flat snake_case fields and the client's domain
// model. Every endpoint's payload shape lives here and nowhere else, so the
// field mapping cannot drift between call sites.
package wire

// ErrorResponse is the API's uniform error body.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"` // field -> message
}
