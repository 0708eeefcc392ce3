// Package errs provides structured application errors carrying an
// operation stack, a kind and an optional offending parameter, plus
// helpers for rendering them as HTTP responses.
//
// The design follows https://github.com/gilcrest/diygoapi (itself derived
// from the error handling in upspin.io).
package errs

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
)

// Error is the fundamental error struct. The zero value of every field is
// valid and simply omitted when rendering.
type Error struct {
	// Op is the operation being performed, usually the name of the
	// method being invoked.
	Op Op
	// Kind is the class of error.
	Kind Kind
	// Param is the request parameter related to the error, if any.
	Param Parameter
	// Realm is the authentication realm for Unauthenticated errors.
	Realm Realm
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return "no error message provided"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) isZero() bool {
	return e.Op == "" && e.Kind == 0 && e.Param == "" && e.Err == nil
}

// Op describes an operation, usually as the type and method,
// such as "chatService.Stream".
type Op string

// Parameter represents the parameter related to the error.
type Parameter string

// Realm is the protection space for Unauthenticated errors.
type Realm string

// Kind defines the class of error.
type Kind uint8

const (
	Other           Kind = iota // Unclassified error
	Invalid                     // Invalid operation for this type of item
	IO                          // External I/O error such as network or file failure
	Exist                       // Item already exists
	NotExist                    // Item does not exist
	Internal                    // Internal error or inconsistency
	Validation                  // Input validation error
	InvalidRequest              // Invalid request
	Unauthenticated             // Caller is not authenticated
	Unauthorized                // Caller is not authorized
	Unavailable                 // Dependency is unavailable, retry may help
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other_error"
	case Invalid:
		return "invalid_operation"
	case IO:
		return "I/O_error"
	case Exist:
		return "item_already_exists"
	case NotExist:
		return "item_does_not_exist"
	case Internal:
		return "internal_error"
	case Validation:
		return "input_validation_error"
	case InvalidRequest:
		return "invalid_request_error"
	case Unauthenticated:
		return "unauthenticated_request"
	case Unauthorized:
		return "unauthorized_request"
	case Unavailable:
		return "dependency_unavailable"
	}

	return "unknown_error_kind"
}

// E builds an *Error from its arguments. There must be at least one
// argument or it panics. The type of each argument determines its meaning:
//
//	Op: the operation being performed
//	Kind: the class of error
//	Parameter: the request parameter related to the error
//	Realm: the authentication realm
//	string: treated as an error message
//	error: the underlying error, wrapped
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("call to errs.E with no arguments")
	}

	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg
		case Kind:
			e.Kind = arg
		case Parameter:
			e.Param = arg
		case Realm:
			e.Realm = arg
		case string:
			e.Err = errors.New(arg)
		case *Error:
			copied := *arg
			e.Err = &copied
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			return fmt.Errorf("errs.E: bad call from %s:%d: %v, unknown type %T, value %v in error call", file, line, args, arg, arg)
		}
	}

	prev, ok := e.Err.(*Error)
	if !ok {
		return e
	}

	// promote fields from the wrapped error so the chain stays sparse
	if prev.Kind == e.Kind {
		prev.Kind = Other
	}

	if e.Kind == Other {
		e.Kind = prev.Kind
		prev.Kind = Other
	}

	if e.Param == "" {
		e.Param = prev.Param
		prev.Param = ""
	}

	if prev.isZero() {
		e.Err = prev.Err
	}

	return e
}

// Str returns an error from a string, convenient as a final argument to E.
func Str(text string) error {
	return errors.New(text)
}

// KindIs reports whether err or any error in its chain is of the given Kind.
func KindIs(kind Kind, err error) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind != Other {
			return e.Kind == kind
		}

		err = e.Err
	}

	return false
}

// OpStack returns the op stack for an error chain, innermost op last.
func OpStack(err error) []string {
	type o struct {
		Op    string
		Order int
	}

	e := err
	i := 0
	var ops []o

	for errors.Unwrap(e) != nil {
		var errsError *Error
		if errors.As(e, &errsError) {
			if errsError.Op != "" {
				ops = append(ops, o{Op: string(errsError.Op), Order: i})
			}
		}

		e = errors.Unwrap(e)
		i++
	}

	stack := make([]string, 0, len(ops))
	for j := len(ops) - 1; j >= 0; j-- {
		stack = append(stack, ops[j].Op)
	}

	return stack
}

// TopError returns the first non-errs error in the chain, which is the
// message meant for the caller.
func TopError(err error) error {
	var e *Error
	for errors.As(err, &e) {
		err = e.Err
	}

	return err
}

func (e *Error) stackTrace() string {
	b := new(bytes.Buffer)

	if e.Op != "" {
		pad(b, ": ")
		b.WriteString(string(e.Op))
	}

	if e.Kind != 0 {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}

	if e.Err != nil {
		var inner *Error
		if errors.As(e.Err, &inner) {
			pad(b, ":\n\t")
			b.WriteString(inner.stackTrace())
		} else {
			pad(b, ": ")
			b.WriteString(e.Err.Error())
		}
	}

	if b.Len() == 0 {
		return "no error"
	}

	return b.String()
}

func pad(b *bytes.Buffer, str string) {
	if b.Len() == 0 {
		return
	}

	b.WriteString(str)
}
