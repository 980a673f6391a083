// Package api implements the HTTP handlers for the content generation
// service. Handlers stay thin: decode, delegate to the service layer, map
// errors to sanitized responses.
package api
