package model

import "fmt"

// Status is the workflow state shared by tasks and task lists.
type Status string

const (
	StatusOpened  Status = "opened"
	StatusOngoing Status = "ongoing"
	StatusDone    Status = "done"
)

// ParseStatus maps a wire value onto a Status, rejecting anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpened, StatusOngoing, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) String() string { return string(s) }

// Priority ranks a task list.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a wire value onto a Priority, rejecting anything outside the closed set.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, err := ParsePriority(string(p))
	return err == nil
}

func (p Priority) String() string { return string(p) }
