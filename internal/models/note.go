// Package models defines the domain types for Ansuz.
package models

// Note is a user-authored study note tied to a subject.
//
// Timestamps are milliseconds since the Unix epoch; the persisted JSON
// keys match the layout expected by the mobile client.
type Note struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
