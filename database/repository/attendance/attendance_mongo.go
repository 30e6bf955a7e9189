package attendanceRepo

import (
	"context"
	"fmt"
	"time"

	"institute/database"
	"institute/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AttendanceRepository defines methods for attendance data access.
type AttendanceRepository interface {
	// Mark upserts the attendance entry for a student on a date. Marking
	// the same date twice overwrites the earlier entry.
	Mark(entry *models.AttendanceEntry) error
	// ListByStudent retrieves all entries for a student, newest first.
	ListByStudent(studentID string) ([]models.AttendanceEntry, error)
}

// MongoAttendanceRepo implements AttendanceRepository using MongoDB.
type MongoAttendanceRepo struct {
	coll *mongo.Collection
}

// NewMongoAttendanceRepo creates a new AttendanceRepository using MongoDB.
func NewMongoAttendanceRepo() AttendanceRepository {
	coll := database.DB().Collection("attendance")
	repo := &MongoAttendanceRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// Mark upserts one attendance entry.
func (r *MongoAttendanceRepo) Mark(entry *models.AttendanceEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry.CreatedAt = time.Now()
	filter := bson.M{"studentId": entry.StudentID, "date": entry.Date}
	update := bson.M{"$set": entry}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to mark attendance for student %s on %s: %w", entry.StudentID, entry.Date, err)
	}
	return nil
}

// ListByStudent retrieves the attendance history for one student.
func (r *MongoAttendanceRepo) ListByStudent(studentID string) ([]models.AttendanceEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance for student %s: %w", studentID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.AttendanceEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode attendance entries: %w", err)
	}
	return entries, nil
}
