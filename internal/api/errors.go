package api

import "fmt"

// Machine codes used when the backend does not supply one.
const (
	CodeHTTP        = "HTTP_ERROR"
	CodeAPI         = "API_ERROR"
	CodeNetwork     = "NETWORK_ERROR"
	CodeBadResponse = "BAD_RESPONSE"
)

// Error is a failed call. Message is meant for the user, Code for programs.
// Status is 0 when no response was received.
type Error struct {
	Status  int
	Code    string
	Message string

	causes []error
}

// Error formats the failure as "message (CODE)".
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap exposes the domain sentinels and transport errors behind the failure.
func (e *Error) Unwrap() []error {
	return e.causes
}

func (e *Error) with(cause error) *Error {
	e.causes = append(e.causes, cause)
	return e
}
