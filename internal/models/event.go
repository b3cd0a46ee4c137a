package models

// EventType classifies a calendar event.
type EventType string

const (
	EventExam     EventType = "exam"
	EventTest     EventType = "test"
	EventHomework EventType = "homework"
	EventDeadline EventType = "deadline"
)

// EventTypes lists every valid event type.
func EventTypes() []EventType {
	return []EventType{EventExam, EventTest, EventHomework, EventDeadline}
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventExam, EventTest, EventHomework, EventDeadline:
		return true
	}
	return false
}

// Event is a calendar entry pinned to a single day.
// Date is a calendar date string in YYYY-MM-DD form.
type Event struct {
	ID      string    `json:"id"`
	Date    string    `json:"date"`
	Title   string    `json:"title"`
	Type    EventType `json:"type"`
	Subject string    `json:"subject"`
}
