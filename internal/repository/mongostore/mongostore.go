// Package mongostore keeps users, tasks and audit entries in MongoDB. Uniqueness of
// user email and of (ownerUserId, title) is enforced by unique indexes.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
	auditCollection = "audit_logs"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("mongo connected", "database", database)
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop deletes the whole database. Used by integration tests.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// EnsureIndexes creates the unique indexes the services rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = s.db.Collection(tasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerUserId", Value: 1}, {Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("tasks_owner_title_key"),
	})
	if err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}

	_, err = s.db.Collection(auditCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

func (s *Store) Users() *UserStore  { return &UserStore{coll: s.db.Collection(usersCollection)} }
func (s *Store) Tasks() *TaskStore  { return &TaskStore{coll: s.db.Collection(tasksCollection)} }
func (s *Store) Audit() *AuditStore { return &AuditStore{coll: s.db.Collection(auditCollection)} }

type UserStore struct {
	coll *mongo.Collection
}

func (u *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := u.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := u.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

func (u *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := u.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

type TaskStore struct {
	coll *mongo.Collection
}

func (ts *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := ts.coll.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByOwner returns tasks in natural (insertion) order.
func (ts *TaskStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	cur, err := ts.coll.Find(ctx, bson.M{"ownerUserId": ownerID},
		options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	res := make([]*domain.Task, 0)
	if err := cur.All(ctx, &res); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return res, nil
}

func (ts *TaskStore) GetByTitle(ctx context.Context, ownerID, title string) (*domain.Task, error) {
	var t domain.Task
	err := ts.coll.FindOne(ctx, bson.M{"ownerUserId": ownerID, "title": title}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

func (ts *TaskStore) ExistsByTitle(ctx context.Context, ownerID, title string) (bool, error) {
	n, err := ts.coll.CountDocuments(ctx, bson.M{"ownerUserId": ownerID, "title": title}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return n > 0, nil
}

func (ts *TaskStore) Update(ctx context.Context, ownerID, currentTitle string, t *domain.Task) error {
	update := bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Task
	err := ts.coll.FindOneAndUpdate(ctx, bson.M{"ownerUserId": ownerID, "title": currentTitle}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrTaskNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("update task: %w", err)
	}
	*t = updated
	return nil
}

func (ts *TaskStore) DeleteByTitle(ctx context.Context, ownerID, title string) error {
	res, err := ts.coll.DeleteOne(ctx, bson.M{"ownerUserId": ownerID, "title": title})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

type AuditStore struct {
	coll *mongo.Collection
}

func (a *AuditStore) Create(ctx context.Context, l *domain.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now().UTC()
	if _, err := a.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (a *AuditStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuditLog, error) {
	// newest first; createdAt has only millisecond precision
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: -1}}).SetLimit(int64(limit))
	cur, err := a.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	res := make([]*domain.AuditLog, 0)
	if err := cur.All(ctx, &res); err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	return res, nil
}
