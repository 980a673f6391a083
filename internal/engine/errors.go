package engine

import "errors"

// Typed failures returned by Generator implementations. The orchestrator
// collapses all of them into the same task outcome but keeps the distinction
// in the recorded error text, and its retry policy only ever applies to
// ErrEngineUnavailable and ErrEngineFault.
var (
	// ErrEngineUnavailable is returned on transport failures and timeouts,
	// when the engine could not be reached at all.
	ErrEngineUnavailable = errors.New("content engine unavailable")

	// ErrEngineRejected is returned when the engine rejects the request as
	// malformed (a client-error response). Never retried.
	ErrEngineRejected = errors.New("content engine rejected request")

	// ErrEngineFault is returned when the engine reports a server-side
	// failure while processing an otherwise well-formed request.
	ErrEngineFault = errors.New("content engine internal failure")

	// ErrInvalidResponse is returned when the engine's response body cannot
	// be decoded.
	ErrInvalidResponse = errors.New("invalid response from content engine")
)
