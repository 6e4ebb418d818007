package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")

	// Storage errors
	ErrVersionConflict = errors.New("progression record changed concurrently")

	// Habit errors
	ErrNothingToUndo = errors.New("no check-in recorded for that day")
)
