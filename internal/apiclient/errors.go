package apiclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind tags why a call failed.
type ErrorKind int

const (
	// KindValidation: the server answered with a field -> message map.
	KindValidation ErrorKind = iota + 1
	// KindServer: the server answered with a general message only.
	KindServer
	// KindTransport: no usable answer reached the client.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

const (
	FallbackMessage  = "Une erreur est survenue, veuillez réessayer"
	TransportMessage = "Impossible de joindre le serveur, vérifiez votre connexion"
)

// APIError is the failure side of every call.
type APIError struct {
	Kind        ErrorKind
	StatusCode  int
	Message     string
	FieldErrors map[string]string
	Err         error
}

func (e *APIError) Error() string {
	if e.Kind == KindTransport && e.Err != nil {
		return fmt.Sprintf("api %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("api %s error (status %d): %s", e.Kind, e.StatusCode, e.DisplayMessage())
}

func (e *APIError) Unwrap() error { return e.Err }

// DisplayMessage flattens field errors as "field: message" sorted by field,
// else returns the server message, else a generic fallback.
func (e *APIError) DisplayMessage() string {
	if len(e.FieldErrors) > 0 {
		fields := make([]string, 0, len(e.FieldErrors))
		for f := range e.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f+": "+e.FieldErrors[f])
		}
		return strings.Join(parts, ", ")
	}
	if e.Kind == KindTransport {
		return TransportMessage
	}
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return FallbackMessage
}

// DisplayMessage returns what a user should see for err.
func DisplayMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.DisplayMessage()
	}
	return FallbackMessage
}

// IsUnauthorized reports whether err is a 401 answer.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
