// Package api serves the task, tag, category and profile endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"todo-app/internal/errs"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Envelope wraps every response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors"`
}

var statusByCode = map[string]int{
	errs.EUnauthenticated: http.StatusUnauthorized,
	errs.ENotFound:        http.StatusNotFound,
	errs.EConflict:        http.StatusConflict,
	errs.EInvalid:         http.StatusBadRequest,
	errs.EInternal:        http.StatusInternalServerError,
}

// API writes envelopes and maps errors to status codes.
type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{log: log}
}

// Respond writes data in a success envelope.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, message string) {
	a.write(w, r, status, Envelope{Success: true, Data: data, Message: message, Errors: []string{}})
}

// Err writes err in a failure envelope. Internal errors are logged with their
// cause and replaced by an opaque message.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		a.log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	a.write(w, r, status, Envelope{Success: false, Errors: errorList(err)})
}

func errorList(err error) []string {
	if errs.ErrorCode(err) == errs.EInvalid {
		var merr *multierror.Error
		if errors.As(err, &merr) && len(merr.Errors) > 0 {
			list := make([]string, 0, len(merr.Errors))
			for _, e := range merr.Errors {
				list = append(list, e.Error())
			}
			return list
		}
	}
	return []string{errs.ErrorMessage(err)}
}

func (a *API) write(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Debug("Failed to write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// DecodeJSON reads a single JSON document from the request body into v.
// Decoder errors are reduced to field-level messages.
func (a *API) DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errs.Invalid("api.decode", decodeError(err))
	}
	return nil
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		timeErr   *time.ParseError
	)
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("request body is required")
	case errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return fmt.Errorf("request body is not valid JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return fmt.Errorf("request body must be a JSON object")
		}
		return fmt.Errorf("%s: must be a %s", typeErr.Field, jsonKind(typeErr.Type))
	case errors.As(err, &timeErr):
		return fmt.Errorf("dates must be RFC 3339 timestamps")
	}
	return fmt.Errorf("request body is invalid")
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	if t == reflect.TypeOf(time.Time{}) {
		return "timestamp"
	}
	return "object"
}
