package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped whenever the envelope shape changes, so clients
// can detect a server they don't understand.
const envelopeVersion = 1

// envelope is the uniform JSON wrapper for every API response body.
type envelope struct {
	V       int            `json:"v" doc:"Envelope format version"`
	Success bool           `json:"success" doc:"Whether the request succeeded"`
	Data    any            `json:"data,omitempty" doc:"Response payload on success"`
	Error   *envelopeError `json:"error,omitempty" doc:"Error details on failure"`
}

// envelopeError carries the error payload inside the envelope.
type envelopeError struct {
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in the standard envelope.
// Registered on the huma config so handlers return bare payloads.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch t := v.(type) {
	case *envelope:
		// Already wrapped.
		return v, nil
	case *APIError:
		return &envelope{
			V: envelopeVersion,
			Error: &envelopeError{
				Code:    t.Code,
				Message: t.Message,
				Details: t.Details,
			},
		}, nil
	case nil:
		return &envelope{V: envelopeVersion, Success: true}, nil
	default:
		return &envelope{V: envelopeVersion, Success: true, Data: v}, nil
	}
}
