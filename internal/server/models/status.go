package models

import (
	"fmt"
	"strings"
)

type statusCode int

const (
	statusPending statusCode = iota
	statusProcessing
	statusComplete
	statusFailed
)

// ProcessingStatus is the media processing state machine:
// Pending → Processing → {Complete, Failed}, with Pending → Complete and
// Pending → Failed allowed for synchronous pipelines. Complete and Failed
// are terminal.
type ProcessingStatus struct {
	code    statusCode
	message string
}

func StatusPending() ProcessingStatus    { return ProcessingStatus{code: statusPending} }
func StatusProcessing() ProcessingStatus { return ProcessingStatus{code: statusProcessing} }
func StatusComplete() ProcessingStatus   { return ProcessingStatus{code: statusComplete} }

// StatusFailed creates the terminal failure state carrying the reason.
func StatusFailed(message string) ProcessingStatus {
	return ProcessingStatus{code: statusFailed, message: message}
}

func (s ProcessingStatus) IsPending() bool    { return s.code == statusPending }
func (s ProcessingStatus) IsProcessing() bool { return s.code == statusProcessing }
func (s ProcessingStatus) IsComplete() bool   { return s.code == statusComplete }
func (s ProcessingStatus) IsFailed() bool     { return s.code == statusFailed }

// ErrorMessage returns the failure reason when the status is Failed.
func (s ProcessingStatus) ErrorMessage() (string, bool) {
	if s.code != statusFailed {
		return "", false
	}
	return s.message, true
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s.code {
	case statusPending:
		return next.code == statusProcessing || next.code == statusComplete || next.code == statusFailed
	case statusProcessing:
		return next.code == statusComplete || next.code == statusFailed
	default:
		// Complete and Failed are terminal.
		return false
	}
}

// String renders the status in its persisted form: "pending", "processing",
// "complete" or "failed: <message>".
func (s ProcessingStatus) String() string {
	switch s.code {
	case statusPending:
		return "pending"
	case statusProcessing:
		return "processing"
	case statusComplete:
		return "complete"
	default:
		if s.message == "" {
			return "failed"
		}
		return "failed: " + s.message
	}
}

// ParseProcessingStatus is the inverse of String.
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	switch {
	case s == "pending":
		return StatusPending(), nil
	case s == "processing":
		return StatusProcessing(), nil
	case s == "complete":
		return StatusComplete(), nil
	case s == "failed":
		return StatusFailed(""), nil
	case strings.HasPrefix(s, "failed: "):
		return StatusFailed(strings.TrimPrefix(s, "failed: ")), nil
	default:
		return ProcessingStatus{}, fmt.Errorf("unknown processing status: %q", s)
	}
}
