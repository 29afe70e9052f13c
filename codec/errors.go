package cbor

import (
	"errors"
	"reflect"
	"strconv"
)

const resumableDefault = false

var (
	// ErrShortBytes is returned when the slice being decoded is too short
	// to contain the next data item.
	ErrShortBytes error = errShort{}

	// ErrMaxDepthExceeded is returned when container nesting exceeds the
	// decode-path depth limit.
	ErrMaxDepthExceeded error = errors.New("cbor: max nesting depth exceeded")

	// ErrUnmatchedBreak is returned when a break code (0xff) appears
	// without an open indefinite-length container, on either the encode
	// or the decode path.
	ErrUnmatchedBreak error = errors.New("cbor: break without open indefinite-length container")

	// ErrNotNil is returned when expecting nil
	ErrNotNil error = errors.New("cbor: not nil")

	// ErrInvalidUTF8 is returned when a text string contains invalid UTF-8
	ErrInvalidUTF8 error = errors.New("cbor: invalid UTF-8 in text string")

	// ErrContainerTooLarge is returned when a container length exceeds a
	// configured Decoder limit.
	ErrContainerTooLarge error = errors.New("cbor: container too large")
)

// Error is the interface satisfied by all of the errors that originate from
// this package.
type Error interface {
	error

	// Resumable returns whether or not the error means that the stream of
	// data is malformed and the information is unrecoverable.
	Resumable() bool
}

// contextError allows Error instances to be enhanced with additional context
// about their origin.
type contextError interface {
	Error

	// withContext must not modify the error instance - it must clone and
	// return a new error with the context added.
	withContext(ctx string) error
}

// Cause returns the underlying cause of an error that has been wrapped
// with additional context.
func Cause(e error) error {
	out := e
	if e, ok := e.(errWrapped); ok && e.cause != nil {
		out = e.cause
	}
	return out
}

// Resumable returns whether or not the error means that the stream of data is
// malformed and the information is unrecoverable.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// WrapError wraps an error with additional context that allows the part of the
// serialized type that caused the problem to be identified. Underlying errors
// can be retrieved using Cause()
//
// The input error is not modified - a new error should be returned.
//
// ErrShortBytes is not wrapped with any context due to backward compatibility
// issues with the public API.
func WrapError(err error, ctx ...any) error {
	switch e := err.(type) {
	case errShort:
		return e
	case contextError:
		return e.withContext(ctxString(ctx))
	default:
		return errWrapped{cause: err, ctx: ctxString(ctx)}
	}
}

func ctxString(ctx []any) string {
	out := ""
	for i, v := range ctx {
		if i > 0 {
			out += "/"
		}
		switch s := v.(type) {
		case string:
			out += s
		case int:
			out += strconv.Itoa(s)
		default:
			out += "?"
		}
	}
	return out
}

func addCtx(ctx, add string) string {
	if ctx != "" {
		return add + "/" + ctx
	}
	return add
}

// errWrapped allows arbitrary errors passed to WrapError to be enhanced with
// context and unwrapped with Cause()
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	}
	return e.cause.Error()
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return resumableDefault
}

// Unwrap returns the cause.
func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (e errShort) Error() string   { return "cbor: too few bytes left to read object" }
func (e errShort) Resumable() bool { return false }

// IntOverflow is returned when a decoded integer does not fit the
// requested signed width.
type IntOverflow struct {
	Value         int64 // the value of the integer
	FailedBitsize int   // the bit size that the int64 could not fit into
	ctx           string
}

// Error implements the error interface
func (i IntOverflow) Error() string {
	str := "cbor: " + strconv.FormatInt(i.Value, 10) + " overflows int" + strconv.Itoa(i.FailedBitsize)
	if i.ctx != "" {
		str += " at " + i.ctx
	}
	return str
}

// Resumable is always 'true' for overflows
func (i IntOverflow) Resumable() bool { return true }

func (i IntOverflow) withContext(ctx string) error { i.ctx = addCtx(i.ctx, ctx); return i }

// UintOverflow is returned when a decoded unsigned integer does not fit the
// requested unsigned width.
type UintOverflow struct {
	Value         uint64 // value of the uint
	FailedBitsize int    // the bit size that couldn't fit the value
	ctx           string
}

// Error implements the error interface
func (u UintOverflow) Error() string {
	str := "cbor: " + strconv.FormatUint(u.Value, 10) + " overflows uint" + strconv.Itoa(u.FailedBitsize)
	if u.ctx != "" {
		str += " at " + u.ctx
	}
	return str
}

// Resumable is always 'true' for overflows
func (u UintOverflow) Resumable() bool { return true }

func (u UintOverflow) withContext(ctx string) error { u.ctx = addCtx(u.ctx, ctx); return u }

// A TypeError is returned when a particular decoding method is unsuitable
// for the CBOR item at the cursor. The decoder never casts implicitly: asking
// for an unsigned integer when the next item is a negative integer is a
// TypeError, not a conversion.
type TypeError struct {
	Method  ItemType // type expected by method
	Encoded ItemType // type actually encoded

	ctx string
}

// Error implements the error interface
func (t TypeError) Error() string {
	out := "cbor: attempted to decode type " + quoteStr(t.Encoded.String()) + " with method for " + quoteStr(t.Method.String())
	if t.ctx != "" {
		out += " at " + t.ctx
	}
	return out
}

// Resumable returns 'true' for TypeErrors
func (t TypeError) Resumable() bool { return true }

func (t TypeError) withContext(ctx string) error { t.ctx = addCtx(t.ctx, ctx); return t }

func quoteStr(s string) string { return "\"" + s + "\"" }

// badPrefix builds the error for an unexpected major type at the cursor.
func badPrefix(gotMajor uint8, wantMajor uint8) error {
	return InvalidPrefixError{Want: wantMajor, Got: gotMajor}
}

// InvalidPrefixError is returned when a bad encoding uses a major type that
// is not expected. This kind of error is unrecoverable.
type InvalidPrefixError struct {
	Want uint8
	Got  uint8
}

// Error implements the error interface
func (i InvalidPrefixError) Error() string {
	return "cbor: expected major type " + strconv.Itoa(int(i.Want)) + " but got " + strconv.Itoa(int(i.Got))
}

// Resumable returns 'false' for InvalidPrefixErrors
func (i InvalidPrefixError) Resumable() bool { return false }

// InvalidAdditionalInfoError is returned when a head byte carries one of the
// reserved additional-info values 28-30.
type InvalidAdditionalInfoError struct {
	Major uint8
	Info  uint8
}

// Error implements the error interface
func (e InvalidAdditionalInfoError) Error() string {
	return "cbor: reserved additional info " + strconv.Itoa(int(e.Info)) +
		" in head for major type " + strconv.Itoa(int(e.Major))
}

// Resumable returns 'false': the head byte itself is malformed.
func (e InvalidAdditionalInfoError) Resumable() bool { return false }

// ErrUnsupportedType is returned when a value outside the supported set is
// supplied to a function that accepts arbitrary values, at any nesting depth.
type ErrUnsupportedType struct {
	T reflect.Type

	ctx string
}

// Error implements error
func (e *ErrUnsupportedType) Error() string {
	out := "cbor: unsupported type"
	if e.T != nil {
		out += " " + quoteStr(e.T.String())
	}
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Resumable returns 'true' for ErrUnsupportedType
func (e *ErrUnsupportedType) Resumable() bool { return true }

func (e *ErrUnsupportedType) withContext(ctx string) error {
	o := *e
	o.ctx = addCtx(o.ctx, ctx)
	return &o
}

// UnsupportedTagError is returned by the materializing decode when it meets a
// semantic tag it has no interpretation for. Raw tag access remains available
// through PopNextTagVal.
type UnsupportedTagError struct {
	Num uint64
}

// Error implements error
func (e UnsupportedTagError) Error() string {
	return "cbor: no conversion registered for tag " + strconv.FormatUint(e.Num, 10)
}

// Resumable returns 'true': the stream itself is well-formed.
func (e UnsupportedTagError) Resumable() bool { return true }

// ShapeError is returned by the shape-driven writer when a value disagrees
// with the shape that describes it.
type ShapeError struct {
	TypeName string // shape type name being applied
	Value    any    // offending value

	ctx string
}

// Error implements error
func (e ShapeError) Error() string {
	out := "cbor: nil value does not match shape " + quoteStr(e.TypeName)
	if e.Value != nil {
		out = "cbor: value of type " + quoteStr(reflect.TypeOf(e.Value).String()) +
			" does not match shape " + quoteStr(e.TypeName)
	}
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Resumable returns 'true' for ShapeErrors
func (e ShapeError) Resumable() bool { return true }

func (e ShapeError) withContext(ctx string) error { e.ctx = addCtx(e.ctx, ctx); return e }

// UnknownShapeTypeError is returned when a shape reports a type name the
// writer does not implement. It is raised before any bytes are written for
// the offending subtree.
type UnknownShapeTypeError struct {
	TypeName string
}

// Error implements error
func (e UnknownShapeTypeError) Error() string {
	return "cbor: unknown shape type " + quoteStr(e.TypeName)
}

// Resumable returns 'true' for UnknownShapeTypeError
func (e UnknownShapeTypeError) Resumable() bool { return true }
