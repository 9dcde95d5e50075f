// Package services defines the business logic for daily analytics
// aggregation and AI auto-responses. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors cover configuration problems the caller must fix (bad request
// shape, unknown friend, missing settings). They are the ONLY errors the AI
// pipeline surfaces: every external-dependency or content-policy failure is
// downgraded to a 200 fallback result instead (see AIService.Respond).
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrFriendNotFound indicates that the requested friend does not exist.
	ErrFriendNotFound = errors.New("friend not found")

	// ErrAINotConfigured indicates the resolved tenant has no AISettings
	// row. This is a configuration error, not a transient failure.
	ErrAINotConfigured = errors.New("ai not configured")

	// ErrEmptyMessage is returned when the inbound message text is empty
	// after normalization.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrInvalidDate is returned when an aggregation target date does not
	// parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("target date must be formatted YYYY-MM-DD")
)
