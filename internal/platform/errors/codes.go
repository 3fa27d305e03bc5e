// Package errors provides structured error handling for the installer.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Envelope errors
	CodeLateRedirect   Code = "ENVELOPE_LATE_REDIRECT"
	CodeEnvelopeFrozen Code = "ENVELOPE_FROZEN"
	CodeTransportWrite Code = "ENVELOPE_TRANSPORT_WRITE"

	// Session errors
	CodeSessionTokenInvalid Code = "SESSION_TOKEN_INVALID"
	CodeSessionTokenExpired Code = "SESSION_TOKEN_EXPIRED"
	CodeSessionMissing      Code = "SESSION_MISSING"

	// Wizard step errors
	CodeStepUnknown        Code = "STEP_UNKNOWN"
	CodeStepOutOfOrder     Code = "STEP_OUT_OF_ORDER"
	CodeStepInvalidInput   Code = "STEP_INVALID_INPUT"
	CodeConnectProbeFailed Code = "CONNECT_PROBE_FAILED"

	// Storage errors
	CodeNotFound            Code = "NOT_FOUND"
	CodeActiveWizardExists  Code = "ACTIVE_WIZARD_EXISTS"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodeAnswerEmptyStepName Code = "ANSWER_EMPTY_STEP_NAME"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad input from the browser
	case CodeStepInvalidInput,
		CodeAnswerEmptyStepName:
		return http.StatusBadRequest

	// State does not allow the operation; programming errors in the
	// envelope discipline are deliberately surfaced as server errors.
	case CodeLateRedirect,
		CodeEnvelopeFrozen,
		CodeTransportWrite:
		return http.StatusInternalServerError

	case CodeStepOutOfOrder,
		CodeActiveWizardExists,
		CodeConnectProbeFailed:
		return http.StatusConflict

	case CodeSessionTokenInvalid,
		CodeSessionTokenExpired,
		CodeSessionMissing:
		return http.StatusUnauthorized

	case CodeNotFound,
		CodeStepUnknown:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
