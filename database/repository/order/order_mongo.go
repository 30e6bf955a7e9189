package orderRepo

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

// MongoOrderRepo implements OrderRepository using MongoDB.
type MongoOrderRepo struct {
	coll *mongo.Collection
}

// NewMongoOrderRepo creates a new OrderRepository backed by MongoDB.
func NewMongoOrderRepo() OrderRepository {
	coll := database.DB().Collection("payment_orders")
	repo := &MongoOrderRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoOrderRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "studentId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new payment order document.
func (r *MongoOrderRepo) Create(ctx context.Context, order *models.PaymentOrder) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create payment order %s: %w", order.OrderID, err)
	}
	return nil
}

// GetByOrderID retrieves an order by its gateway-issued ID.
func (r *MongoOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := r.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment order %s: %w", orderID, err)
	}
	return &order, nil
}

// Transition performs a guarded state change. The state filter makes the
// update a compare-and-set: whichever transition is persisted first wins,
// and the loser observes MatchedCount == 0.
func (r *MongoOrderRepo) Transition(ctx context.Context, orderID string, from []models.OrderState, to models.OrderState, set map[string]interface{}) (bool, error) {
	update := bson.M{
		"state":     to,
		"updatedAt": time.Now(),
	}
	for k, v := range set {
		update[k] = v
	}

	filter := bson.M{
		"orderId": orderID,
		"state":   bson.M{"$in": from},
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return false, fmt.Errorf("failed to transition payment order %s to %s: %w", orderID, to, err)
	}
	return res.MatchedCount == 1, nil
}
