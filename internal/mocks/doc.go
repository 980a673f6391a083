// Package mocks provides mock implementations of the store and engine
// interfaces for testing.
package mocks
