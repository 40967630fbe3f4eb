package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure for clients.
type Kind int

const (
	// KindServerError is any store failure not otherwise classified.
	KindServerError Kind = iota
	KindOutOfBounds
	KindRatingOutOfBounds
	KindNegativeOrdinal
	KindEmptyFormatText
	KindInvalidCursor
	KindInvalidReference
	KindNotFound
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrServerError       = errors.New("internal server error")
	ErrOutOfBounds       = errors.New("page size out of bounds")
	ErrRatingOutOfBounds = errors.New("rating out of bounds")
	ErrNegativeOrdinal   = errors.New("negative ordinal")
	ErrEmptyFormatText   = errors.New("empty format text")
	ErrInvalidCursor     = errors.New("invalid cursor")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrNotFound          = errors.New("not found")
)

var kindNames = map[Kind]string{
	KindServerError:       "server_error",
	KindOutOfBounds:       "out_of_bounds",
	KindRatingOutOfBounds: "rating_out_of_bounds",
	KindNegativeOrdinal:   "negative_ordinal",
	KindEmptyFormatText:   "empty_format_text",
	KindInvalidCursor:     "invalid_cursor",
	KindInvalidReference:  "invalid_reference",
	KindNotFound:          "not_found",
}

var kindSentinels = map[Kind]error{
	KindServerError:       ErrServerError,
	KindOutOfBounds:       ErrOutOfBounds,
	KindRatingOutOfBounds: ErrRatingOutOfBounds,
	KindNegativeOrdinal:   ErrNegativeOrdinal,
	KindEmptyFormatText:   ErrEmptyFormatText,
	KindInvalidCursor:     ErrInvalidCursor,
	KindInvalidReference:  ErrInvalidReference,
	KindNotFound:          ErrNotFound,
}

// String returns the snake_case code used on the wire.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindServerError]
}

// IsValidation reports whether k is raised before any store call.
func (k Kind) IsValidation() bool {
	switch k {
	case KindOutOfBounds, KindRatingOutOfBounds, KindNegativeOrdinal,
		KindEmptyFormatText, KindInvalidCursor, KindInvalidReference:
		return true
	}
	return false
}

// Error is a classified catalog failure. Err carries the detail: a
// validation message, or the underlying store error.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + kindSentinels[e.Kind].Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

func invalid(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err, KindServerError when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

// PublicMessage is the text safe to show a client. Store detail never
// appears in it.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ErrServerError.Error()
	}
	msg := kindSentinels[e.Kind].Error()
	if e.Kind.IsValidation() && e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}
