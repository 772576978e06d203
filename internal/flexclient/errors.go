package flexclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of the Flex Web Service workflow.
// Callers classify with errors.Is; the service's own code/message travel in a
// wrapped StatementError where one was returned.
var (
	// ErrAuthentication means the service rejected the token.
	ErrAuthentication = errors.New("authentication rejected")

	// ErrRequestRejected means the report number is unknown or the request
	// was otherwise refused for a non-credential reason.
	ErrRequestRejected = errors.New("generation request rejected")

	// ErrTransientNetwork means a single HTTP call kept failing after the
	// client's per-call retry budget (timeouts, connection resets, 5xx).
	ErrTransientNetwork = errors.New("transient network failure")

	// ErrPollTimeout means the statement never became ready within the
	// configured attempt budget.
	ErrPollTimeout = errors.New("statement not ready before poll budget exhausted")

	// ErrGenerationExpired means the service returned a terminal failure for
	// the generation reference (expired or invalid). Not retryable.
	ErrGenerationExpired = errors.New("generation reference expired")
)

// StatementError carries the error code and message the service returned.
// It unwraps to the sentinel that classifies it.
type StatementError struct {
	Code    string
	Message string

	sentinel error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("flex service error %s: %s", e.Code, e.Message)
}

func (e *StatementError) Unwrap() error { return e.sentinel }

// Token-related error codes documented for the Flex Web Service.
const (
	codeTokenExpired = "1012"
	codeIPRestricted = "1013"
	codeTokenInvalid = "1015"
	codeInvalidRef   = "1017"
	codeTooManyCalls = "1018"
	codeInProgress   = "1019"
)

// newRequestError classifies a SendRequest failure by its error code.
func newRequestError(code, message string) error {
	sentinel := ErrRequestRejected
	switch code {
	case codeTokenExpired, codeIPRestricted, codeTokenInvalid:
		sentinel = ErrAuthentication
	}
	return &StatementError{Code: code, Message: message, sentinel: sentinel}
}

// newStatementError classifies a terminal GetStatement failure.
func newStatementError(code, message string) error {
	return &StatementError{Code: code, Message: message, sentinel: ErrGenerationExpired}
}
