package models

import "time"

// AttendanceEntry records presence for one student on one date.
type AttendanceEntry struct {
	ID        string    `bson:"id" json:"id"`
	StudentID string    `bson:"studentId" json:"studentId"`
	Date      string    `bson:"date" json:"date"` // YYYY-MM-DD
	Present   bool      `bson:"present" json:"present"`
	MarkedBy  string    `bson:"markedBy" json:"markedBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
