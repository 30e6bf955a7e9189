package models

import "time"

// Message is a notification surfaced on a student's dashboard. Payment
// confirmations and staff announcements share this feed.
type Message struct {
	ID        string            `bson:"id" json:"id"`
	StudentID string            `bson:"studentId" json:"studentId"`
	Type      string            `bson:"type" json:"type"` // e.g. "announcement", "payment_success", "payment_failed"
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}
