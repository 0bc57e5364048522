package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error produced by the client wraps exactly one of these
// in addition to its specific kind, so callers can branch on either level.
var (
	// ErrAuthentication is the class of credential-rejection failures.
	ErrAuthentication = errors.New("authentication error")

	// ErrService is the class of request/response failures.
	ErrService = errors.New("service error")

	// ErrParse is the class of wire-document decoding failures.
	ErrParse = errors.New("parse error")

	// ErrCancelled indicates the caller cancelled the operation.
	ErrCancelled = errors.New("operation cancelled")
)

// Authentication Errors.
var (
	// ErrBadAuthentication indicates the username or password was rejected.
	ErrBadAuthentication = errors.New("bad authentication")

	// ErrCaptchaRequired indicates a CAPTCHA challenge must be solved to log in.
	ErrCaptchaRequired = errors.New("captcha required")

	// ErrNotVerified indicates the account email address has not been verified.
	ErrNotVerified = errors.New("account not verified")

	// ErrTermsNotAgreed indicates the user has not agreed to the terms of service.
	ErrTermsNotAgreed = errors.New("terms not agreed")

	// ErrAccountDeleted indicates the account has been deleted.
	ErrAccountDeleted = errors.New("account deleted")

	// ErrAccountDisabled indicates the account has been disabled.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrServiceDisabled indicates the account's access to the service is disabled.
	ErrServiceDisabled = errors.New("service disabled")
)

// Service Errors.
var (
	// ErrAuthenticationRequired indicates the request needs credentials the
	// authorizer does not hold.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrProtocol indicates the server response was malformed.
	ErrProtocol = errors.New("protocol error")

	// ErrUnavailable indicates the service is temporarily unavailable.
	ErrUnavailable = errors.New("service unavailable")

	// ErrWithQuery indicates a query was rejected.
	ErrWithQuery = errors.New("error with query")

	// ErrWithInsertion indicates an insertion was rejected.
	ErrWithInsertion = errors.New("error with insertion")

	// ErrWithUpdate indicates an update was rejected.
	ErrWithUpdate = errors.New("error with update")

	// ErrWithDeletion indicates a deletion was rejected.
	ErrWithDeletion = errors.New("error with deletion")

	// ErrWithBatchOperation indicates a batch request was rejected as a whole.
	ErrWithBatchOperation = errors.New("error with batch operation")

	// ErrEntryAlreadyInserted indicates an insert was attempted on an entry
	// that already carries a server-assigned id.
	ErrEntryAlreadyInserted = errors.New("entry already inserted")

	// ErrPreconditionFailed indicates the entry's ETag no longer matches the
	// server's copy.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotFound indicates the addressed resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the request conflicts with the resource state.
	ErrConflict = errors.New("conflict")

	// ErrForbidden indicates the credentials lack permission for the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrBadQueryParameter indicates a query parameter was rejected.
	ErrBadQueryParameter = errors.New("bad query parameter")

	// ErrNotModified indicates a conditional query matched the cached ETag.
	ErrNotModified = errors.New("not modified")
)

// Parse Errors.
var (
	// ErrRequiredFieldMissing indicates a required element or property is absent.
	ErrRequiredFieldMissing = errors.New("required field missing")

	// ErrRequiredContentMissing indicates a required value is present but empty.
	ErrRequiredContentMissing = errors.New("required content missing")

	// ErrUnhandledElement indicates an unknown element under strict parsing.
	ErrUnhandledElement = errors.New("unhandled element")

	// ErrEmptyDocument indicates the document had no content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrMalformedDocument indicates the document could not be tokenised.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDuplicateElement indicates a single-valued element appeared twice.
	ErrDuplicateElement = errors.New("duplicate element")

	// ErrInvalidFormat indicates a value could not be converted to its field type.
	ErrInvalidFormat = errors.New("invalid format")
)

// AuthenticationError is returned by authorizers when the server rejects
// the supplied credentials.
type AuthenticationError struct {
	// Kind is one of the Authentication Errors sentinels.
	Kind error
	// URI is an information page for the user, or the CAPTCHA image.
	URI string
	// Message is extra context from the server, if any.
	Message string
}

func (e *AuthenticationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.URI != "" {
		fmt.Fprintf(&b, " (see %s)", e.URI)
	}
	return b.String()
}

func (e *AuthenticationError) Unwrap() []error {
	return []error{e.Kind, ErrAuthentication}
}

// ErrorDetail is one entry of a structured error response body.
type ErrorDetail struct {
	Domain   string
	Code     string
	Location string
	Reason   string
}

func (d ErrorDetail) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Domain, d.Code, d.Location} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ":")
	if d.Reason != "" {
		s += " " + d.Reason
	}
	return s
}

// ServiceError is returned by service operations.
type ServiceError struct {
	// Kind is one of the Service Errors sentinels.
	Kind error
	// Op names the failed operation ("query", "insert", ...).
	Op string
	// Status is the HTTP status code, or 0 for failures before a response.
	Status int
	// Reason is the HTTP reason phrase.
	Reason string
	// Message is the server's message or a local description.
	Message string
	// Detail is the first error from a structured error body.
	Detail *ErrorDetail
	// Err is an underlying cause, if any.
	Err error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d", e.Status)
		if e.Reason != "" {
			fmt.Fprintf(&b, " %s", e.Reason)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Detail != nil {
		fmt.Fprintf(&b, " [%s]", e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ServiceError) Unwrap() []error {
	errs := []error{e.Kind, ErrService}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ParseError is returned when a wire document cannot be mapped onto an entity.
type ParseError struct {
	// Kind is one of the Parse Errors sentinels.
	Kind error
	// Element is the qualified name of the offending element or JSON object.
	Element string
	// Property is the offending attribute, child or member, if any.
	Property string
	// Value is the rejected value, for format errors.
	Value string
	// Err is an underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch {
	case e.Element != "" && e.Property != "":
		fmt.Fprintf(&b, ": %s in <%s>", e.Property, e.Element)
	case e.Element != "":
		fmt.Fprintf(&b, ": <%s>", e.Element)
	case e.Property != "":
		fmt.Fprintf(&b, ": %s", e.Property)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() []error {
	errs := []error{e.Kind, ErrParse}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ProtocolError builds a ServiceError for a malformed server response.
func ProtocolError(op, format string, args ...any) *ServiceError {
	return &ServiceError{Kind: ErrProtocol, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Cancelled wraps a context error so it matches both ErrCancelled and the cause.
func Cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
