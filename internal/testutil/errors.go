// Package testutil provides helpers shared by FORGE tests.
//
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating collaborator failures.
var (
	// ErrMockWorker simulates a stage worker that cannot produce its artifact.
	ErrMockWorker = errors.New("worker unavailable")

	// ErrMockAnalyzer simulates an analyzer call that fails.
	ErrMockAnalyzer = errors.New("analyzer unavailable")

	// ErrMockProducer simulates a generation producer that cannot respond.
	ErrMockProducer = errors.New("producer unavailable")
)
