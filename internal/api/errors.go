package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when a failure carries nothing more useful.
const GenericMessage = "Oops! Something went wrong. Please try again."

// ErrorKind classifies failures at the fetch boundary.
type ErrorKind int

const (
	// KindNetwork means no response was received.
	KindNetwork ErrorKind = iota
	// KindAPI means the backend answered with a non-2xx status.
	KindAPI
	// KindDecode means a 2xx body could not be parsed.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAPI:
		return "api"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method. Message is always safe to show.
type Error struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message extracts the human-readable text for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericMessage
}

// IsCanceled reports whether err came from a request the caller abandoned.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// errorBody matches FastAPI-style error responses:
//
//	{"detail": {"error": "API_ERROR", "message": "..."}}
//	{"detail": "Not Found"}
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type structuredDetail struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *Error {
	e := &Error{
		Kind:    KindAPI,
		Status:  status,
		Message: fmt.Sprintf("Request failed with status code %d", status),
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return e
	}

	var detail structuredDetail
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		e.Code = detail.Error
		if msg := strings.TrimSpace(detail.Message); msg != "" {
			e.Message = msg
		}
		return e
	}

	var plain string
	if err := json.Unmarshal(eb.Detail, &plain); err == nil && strings.TrimSpace(plain) != "" {
		e.Message = strings.TrimSpace(plain)
	}
	return e
}

func newNetworkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: GenericMessage,
		Err:     err,
	}
}
