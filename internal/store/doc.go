// Package store defines the persistence interfaces and errors used by the
// service layer. Implementations live under internal/platform.
package store
