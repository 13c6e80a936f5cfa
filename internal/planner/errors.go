package planner

import "errors"

var (
	ErrValidation = errors.New("invalid planner input")
	ErrNotFound   = errors.New("planner item not found")
	ErrForbidden  = errors.New("forbidden")
	// ErrImmutable is returned when a mentor-assigned task is asked to be removed.
	ErrImmutable = errors.New("mentor-assigned task cannot be deleted")
)
