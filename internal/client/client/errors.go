package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Kind tags the shape of the backend's error detail.
type Kind int

const (
	// KindStatus means the body carried no usable detail.
	KindStatus Kind = iota
	// KindMessage means detail was a single string.
	KindMessage
	// KindFields means detail was a list of per-field errors.
	KindFields
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindFields:
		return "fields"
	default:
		return "status"
	}
}

// FieldError is one entry of a validation detail list.
type FieldError struct {
	Loc []string
	Msg string
}

// Field returns the last element of Loc, which names the offending field.
func (f FieldError) Field() string {
	if len(f.Loc) == 0 {
		return ""
	}
	return f.Loc[len(f.Loc)-1]
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Kind    Kind
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// FieldMessage returns the message attached to field, if any.
func (e *APIError) FieldMessage(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field() == field {
			return f.Msg, true
		}
	}
	return "", false
}

// Message returns a displayable message for any error returned by Client.
func Message(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrUnavailable):
		return "Server unavailable. Please try again."
	default:
		return err.Error()
	}
}

type rawFieldError struct {
	Msg string `json:"msg"`
	Loc []any  `json:"loc"`
}

type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

func fallbackMessage(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}

// parseAPIError builds an APIError from a response body. It never fails:
// unreadable bodies fall back to a status message.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Kind: KindStatus, Message: fallbackMessage(status)}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(env.Detail, &msg); err == nil {
		if msg != "" {
			apiErr.Kind = KindMessage
			apiErr.Message = msg
		}
		return apiErr
	}

	var list []rawFieldError
	if err := json.Unmarshal(env.Detail, &list); err == nil {
		if len(list) == 0 {
			return apiErr
		}
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			loc := make([]string, 0, len(item.Loc))
			for _, l := range item.Loc {
				loc = append(loc, fmt.Sprint(l))
			}
			apiErr.Fields = append(apiErr.Fields, FieldError{Loc: loc, Msg: item.Msg})
			msgs = append(msgs, item.Msg)
		}
		apiErr.Kind = KindFields
		apiErr.Message = strings.Join(msgs, ", ")
		return apiErr
	}

	if !falsyDetail(env.Detail) {
		apiErr.Kind = KindMessage
		apiErr.Message = "An error occurred"
	}
	return apiErr
}

// falsyDetail reports whether detail carries nothing: null, false or zero.
func falsyDetail(detail json.RawMessage) bool {
	switch string(detail) {
	case "null", "false":
		return true
	}
	var n float64
	return json.Unmarshal(detail, &n) == nil && n == 0
}
