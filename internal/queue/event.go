// Package queue defines message payloads exchanged over the message broker.
package queue

// Schedule change actions.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionClear  = "clear"
	ActionLoad   = "load"
)

// ScheduleChangedEvent is published after every schedule mutation.  It
// carries the resulting schedule so consumers never need to call back.
type ScheduleChangedEvent struct {
	SessionID  string   `json:"session_id"`
	Action     string   `json:"action"`
	CourseCode string   `json:"course_code,omitempty"`
	SectionID  string   `json:"section_id,omitempty"`
	Schedule   string   `json:"schedule"`
	Credits    float64  `json:"credits"`
	AverageGPA float64  `json:"average_gpa"`
	Warnings   []string `json:"warnings,omitempty"`
	ChangedAt  string   `json:"changed_at"`
}
