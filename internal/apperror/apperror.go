package apperror

import "errors"

// Kind describes a stable error category that can be mapped to HTTP status codes.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindAlreadyClaimed Kind = "already_claimed"
	KindRateLimited    Kind = "rate_limited"
	KindPoolExhausted  Kind = "pool_exhausted"
)

// Error is a typed error with a stable Kind and a human-readable message.
// Msg should be safe to return to clients; infrastructure failures are never
// wrapped in *Error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFound(msg string, err error) error     { return New(KindNotFound, msg, err) }
func Validation(msg string, err error) error   { return New(KindValidation, msg, err) }
func Conflict(msg string, err error) error     { return New(KindConflict, msg, err) }
func Unauthorized(msg string, err error) error { return New(KindUnauthorized, msg, err) }
func Forbidden(msg string, err error) error    { return New(KindForbidden, msg, err) }

// Claim-flow outcomes. These are expected business results, not infrastructure
// failures; callers branch on them via Is.
func AlreadyClaimed(msg string, err error) error { return New(KindAlreadyClaimed, msg, err) }
func RateLimited(msg string, err error) error    { return New(KindRateLimited, msg, err) }
func PoolExhausted(msg string, err error) error  { return New(KindPoolExhausted, msg, err) }

func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsBusiness reports whether err carries any business-rule kind, as opposed to
// an infrastructure failure that should surface as a generic 500.
func IsBusiness(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
