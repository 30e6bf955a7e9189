package messageRepo

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

// MessageRepository defines methods for the student notification feed.
type MessageRepository interface {
	Create(msg *models.Message) error
	// ListByStudent retrieves a student's feed, newest first.
	ListByStudent(studentID string) ([]models.Message, error)
	// MarkRead flags a message as read.
	MarkRead(id string) error
}

// MongoMessageRepo implements MessageRepository using MongoDB.
type MongoMessageRepo struct {
	coll *mongo.Collection
}

// NewMongoMessageRepo creates a new MessageRepository using MongoDB.
func NewMongoMessageRepo() MessageRepository {
	coll := database.DB().Collection("messages")
	repo := &MongoMessageRepo{coll: coll}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// Create inserts a new message document.
func (r *MongoMessageRepo) Create(msg *models.Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListByStudent retrieves the notification feed for one student.
func (r *MongoMessageRepo) ListByStudent(studentID string) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for student %s: %w", studentID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// MarkRead flags one message as read.
func (r *MongoMessageRepo) MarkRead(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message with id %s not found", id)
	}
	return nil
}
