// Package task provides the bounded background worker pool that executes
// asynchronous generation jobs.
package task
