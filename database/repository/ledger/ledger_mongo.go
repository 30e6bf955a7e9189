package ledgerRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"institute/database"
	"institute/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxCommitAttempts bounds the optimistic retry loop before surfacing
// ErrContention. The in-process lock makes retries rare; they only fire
// when another server instance writes the same account.
const maxCommitAttempts = 3

// accountLocks hands out one mutex per student ID so that updates to
// different accounts never contend with each other.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *accountLocks) lockFor(studentID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, exists := l.locks[studentID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[studentID] = lock
	}
	return lock
}

// MongoAccountRepo implements AccountRepository using MongoDB.
type MongoAccountRepo struct {
	coll  *mongo.Collection
	locks *accountLocks
}

// NewMongoAccountRepo creates a new AccountRepository backed by MongoDB.
func NewMongoAccountRepo() AccountRepository {
	coll := database.DB().Collection("fee_accounts")
	repo := &MongoAccountRepo{
		coll:  coll,
		locks: &accountLocks{locks: make(map[string]*sync.Mutex)},
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAccountRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new fee account document.
func (r *MongoAccountRepo) Create(ctx context.Context, acct *models.FeeAccount) error {
	now := time.Now()
	acct.CreatedAt = now
	acct.UpdatedAt = now
	acct.Version = 1
	if acct.History == nil {
		acct.History = []models.PaymentRecord{}
	}

	if _, err := r.coll.InsertOne(ctx, acct); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("fee account for student %s already exists: %w", acct.StudentID, err)
		}
		return fmt.Errorf("failed to create fee account: %w", err)
	}
	return nil
}

// GetByStudentID retrieves a fee account snapshot.
func (r *MongoAccountRepo) GetByStudentID(ctx context.Context, studentID string) (*models.FeeAccount, error) {
	var acct models.FeeAccount
	if err := r.coll.FindOne(ctx, bson.M{"studentId": studentID}).Decode(&acct); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch fee account for student %s: %w", studentID, err)
	}
	return &acct, nil
}

// WithAccount serializes all mutations of a single account. The per-key
// mutex serializes writers inside this process while the version stamp
// guards against writers in other instances; a lost version race reloads
// and retries up to maxCommitAttempts times.
func (r *MongoAccountRepo) WithAccount(ctx context.Context, studentID string, fn func(*models.FeeAccount) error) (*models.FeeAccount, error) {
	lock := r.locks.lockFor(studentID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		acct, err := r.GetByStudentID(ctx, studentID)
		if err != nil {
			return nil, err
		}

		prevVersion := acct.Version
		if err := fn(acct); err != nil {
			// fn mutated a private decode only; nothing was persisted.
			return nil, err
		}

		acct.Version = prevVersion + 1
		acct.UpdatedAt = time.Now()

		res, err := r.coll.ReplaceOne(ctx, bson.M{"studentId": studentID, "version": prevVersion}, acct)
		if err != nil {
			return nil, fmt.Errorf("failed to persist fee account for student %s: %w", studentID, err)
		}
		if res.MatchedCount == 1 {
			return acct, nil
		}
		// Another writer committed first; reload and retry.
	}
	return nil, ErrContention
}
