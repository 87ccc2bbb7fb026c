// Package httpx renders JSON responses and the typed error envelope shared by
// every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindUpstreamFailure Kind = "upstream_failure"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a client-safe error. Message and Details are rendered; Cause is
// only logged.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func Validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: msg, Cause: cause}
}

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// Classify maps repository errors onto the error taxonomy. what names the
// resource for not-found and conflict messages.
func Classify(err error, what string) *Error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return e
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(what + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Conflict(what + " is referenced by other records")
	default:
		return Upstream("database operation failed", err)
	}
}

type envelope struct {
	Error   string            `json:"error"`
	Code    Kind              `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError renders err as the JSON error envelope. Errors that are not
// *Error are logged and reported as a generic upstream failure.
func WriteError(w http.ResponseWriter, r *http.Request, err error, what string) {
	e := Classify(err, what)
	if e.Kind == KindUpstreamFailure {
		log.Printf("[ERROR] %s %s: %v", r.Method, r.URL.Path, err)
	}
	JSON(w, e.Kind.Status(), envelope{Error: e.Message, Code: e.Kind, Details: e.Details})
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate runs the struct's validate tags and converts failures into a
// validation error keyed by JSON field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Validation("invalid request", nil)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return Validation("validation failed", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " long"
	default:
		return "is invalid"
	}
}

// Decode reads a JSON body into dst and validates it.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return Validation("invalid JSON payload", nil)
	}
	return Validate(dst)
}

// PathID parses the named mux route variable as a positive id.
func PathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, Validation("invalid "+name, nil)
	}
	return uint(id), nil
}
