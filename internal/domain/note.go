package domain

import "time"

// Note is a free-form journal entry kept alongside tasks.
type Note struct {
	ID      *int64    `json:"id,omitempty"`
	Title   string    `json:"title"`
	Content string    `json:"content,omitempty"`
	Tag     string    `json:"tag,omitempty"`
	Date    time.Time `json:"date"`
}
