package errs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrResponse is the JSON body written for all error responses.
type ErrResponse struct {
	Error ServiceError `json:"error"`
}

// ServiceError carries the user-facing parts of an error.
type ServiceError struct {
	Kind    string `json:"kind,omitempty"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// HTTPErrorResponse logs err and writes it to w as JSON with a status
// code derived from the error kind. A nil err is treated as an internal
// inconsistency.
func HTTPErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if err == nil {
		unknownErrorResponse(w, logger, Str("nil error passed to error response"))
		return
	}

	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case Unauthenticated:
			unauthenticatedErrorResponse(w, logger, e)
			return
		case Unauthorized:
			unauthorizedErrorResponse(w, logger, e)
			return
		default:
			typicalErrorResponse(w, logger, e)
			return
		}
	}

	unknownErrorResponse(w, logger, err)
}

func httpStatusCode(k Kind) int {
	switch k {
	case Invalid, InvalidRequest, Validation:
		return http.StatusBadRequest
	case NotExist:
		return http.StatusNotFound
	case Exist:
		return http.StatusConflict
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case Unavailable:
		return http.StatusBadGateway
	case Other, IO, Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func typicalErrorResponse(w http.ResponseWriter, logger zerolog.Logger, e *Error) {
	statusCode := httpStatusCode(e.Kind)

	// an empty *Error should never happen, but it must not produce an
	// empty response body either
	if e.isZero() {
		unknownErrorResponse(w, logger, Str("empty error"))
		return
	}

	logError(logger, statusCode, e)

	errResponse := ErrResponse{
		Error: ServiceError{
			Kind:    e.Kind.String(),
			Param:   string(e.Param),
			Message: e.Error(),
		},
	}

	writeResponse(w, logger, statusCode, errResponse)
}

func unauthenticatedErrorResponse(w http.ResponseWriter, logger zerolog.Logger, e *Error) {
	logError(logger, http.StatusUnauthorized, e)

	if e.Realm == "" {
		e.Realm = "default"
	}

	w.Header().Set("WWW-Authenticate", `Bearer realm="`+string(e.Realm)+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}

func unauthorizedErrorResponse(w http.ResponseWriter, logger zerolog.Logger, e *Error) {
	logError(logger, http.StatusForbidden, e)
	w.WriteHeader(http.StatusForbidden)
}

func unknownErrorResponse(w http.ResponseWriter, logger zerolog.Logger, err error) {
	logger.Error().Err(err).Msg("unknown_error")

	errResponse := ErrResponse{
		Error: ServiceError{
			Kind:    Other.String(),
			Message: err.Error(),
		},
	}

	writeResponse(w, logger, http.StatusInternalServerError, errResponse)
}

func logError(logger zerolog.Logger, statusCode int, e *Error) {
	logger.Error().
		Int("http_status_code", statusCode).
		Str("kind", e.Kind.String()).
		Str("parameter", string(e.Param)).
		Strs("stack", OpStack(e)).
		Err(e.Err).
		Msg("error_response")
}

func writeResponse(w http.ResponseWriter, logger zerolog.Logger, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error().Err(err).Msg("encoding error response")
	}
}
