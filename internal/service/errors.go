package service

import "errors"

var (
	// ErrInvalidQR covers every integrity failure on a scanned payload:
	// malformed structure, checksum mismatch, or an unresolvable token. The
	// caller deliberately cannot tell which check failed.
	ErrInvalidQR = errors.New("invalid or tampered qr code")

	// ErrStudentNotFound indicates an id with no active student behind it.
	ErrStudentNotFound = errors.New("student not found")

	// ErrNoActiveQuarter means no quarter covers today's business date.
	// Lateness cannot be computed without a school start time, so the scan
	// fails instead of assuming a default.
	ErrNoActiveQuarter = errors.New("no active quarter found")

	// ErrAlreadyCompleted rejects a third scan on a finished day.
	ErrAlreadyCompleted = errors.New("attendance already completed for today")

	// ErrDuplicateScan rejects a repeat tap within the dedupe window.
	ErrDuplicateScan = errors.New("duplicate scan, please wait a moment")

	// ErrNotificationNotFound indicates a missing or foreign notification id.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrValidation wraps request-shape failures so handlers can map them to
	// a 400 without inspecting validator internals.
	ErrValidation = errors.New("validation failed")
)
