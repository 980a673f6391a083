// Package engine defines the contract with the external content generation
// engine: the request/response wire types, the Generator interface, typed
// failures, and the normalization of the engine's loosely-shaped responses
// into one canonical workflow summary.
package engine
