// Package calendar derives per-date marking maps for calendar rendering.
package calendar

import "github.com/starford/ansuz/internal/models"

// Dot is a single event indicator. It serializes as an empty object;
// the renderer draws one dot per entry.
type Dot struct{}

// DayMark is the display instruction for one calendar date, in the shape
// the calendar renderer consumes.
type DayMark struct {
	Selected bool  `json:"selected,omitempty"`
	Marked   bool  `json:"marked,omitempty"`
	Dots     []Dot `json:"dots,omitempty"`
}

// Aggregate builds the marking map for the given event collection and
// the currently selected date. Pure and safe to recompute per render.
//
// The selected date is always present and carries only the selected
// marking: event dots on it are suppressed, selected wins outright.
// Every other date with events is marked with one dot per event.
func Aggregate(events []models.Event, selectedDate string) map[string]DayMark {
	marks := map[string]DayMark{
		selectedDate: {Selected: true},
	}
	for _, e := range events {
		if e.Date == selectedDate {
			continue
		}
		m := marks[e.Date]
		m.Marked = true
		m.Dots = append(m.Dots, Dot{})
		marks[e.Date] = m
	}
	return marks
}
