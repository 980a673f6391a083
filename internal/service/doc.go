// Package service contains the workflow orchestrator that turns content
// generation requests into tracked tasks, drives them through the external
// engine, and guarantees every task reaches a terminal state.
package service
