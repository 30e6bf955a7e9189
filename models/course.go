package models

import "time"

// Course is a catalog entry; Fee (paise) seeds the fee account total at enrollment.
type Course struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Duration    string    `bson:"duration,omitempty" json:"duration,omitempty"`
	Fee         int64     `bson:"fee" json:"fee"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
