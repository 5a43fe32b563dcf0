package services

import (
	"fmt"
	"strings"
)

// Service errors
var (
	ErrNoActiveCategory = &ServiceError{Message: "enable at least one category with servings above zero"}
	ErrHistoryEmpty     = &ServiceError{Message: "history is already empty"}
	ErrNoCombo          = &ServiceError{Message: "generate a combo first"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// EmptyCategoryError is returned when an active category has no dishes to draw
type EmptyCategoryError struct {
	IDs        []string
	Categories []string // display labels, same order as IDs
}

func (e *EmptyCategoryError) Error() string {
	return fmt.Sprintf("add at least one dish in: %s", strings.Join(e.Categories, ", "))
}

// ImportFormatError is returned when a backup cannot be read at all
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Reason, e.Err)
	}
	return "invalid backup: " + e.Reason
}

func (e *ImportFormatError) Unwrap() error {
	return e.Err
}
