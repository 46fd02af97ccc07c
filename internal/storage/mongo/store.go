// Package mongo keeps each content collection in its own MongoDB collection.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel_cms/internal/domain"
)

const usersColl = "users"

// record keeps the entity body as JSON text. Page content is caller-supplied
// JSON, and converting it to BSON would read keys like "$date" or "$oid" as
// extended-JSON type markers.
type record struct {
	ID        string    `bson:"_id"`
	Slug      string    `bson:"slug,omitempty"`
	Body      string    `bson:"body"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type userRecord struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Store has no multi-document transactions (standalone servers lack them);
// Atomic serializes blocks within this process instead.
type Store struct {
	db  *mongo.Database
	tx  sync.Mutex
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }}
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *Store, error) {
	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := cl.Ping(ctx, nil); err != nil {
		_ = cl.Disconnect(ctx)
		return nil, nil, err
	}
	return cl, New(cl.Database(database)), nil
}

// EnsureIndexes creates the unique slug and email indexes.
func (s *Store) EnsureIndexes(ctx context.Context, sluggedColls ...string) error {
	for _, c := range sluggedColls {
		_, err := s.db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "slug", Value: bson.D{{Key: "$exists", Value: true}}}}),
		})
		if err != nil {
			return fmt.Errorf("index %s.slug: %w", c, err)
		}
		_, err = s.db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("index %s.createdAt: %w", c, err)
		}
	}
	_, err := s.db.Collection(usersColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrConflict
	}
	return err
}

func toRecord(d domain.Document) (record, error) {
	if !json.Valid(d.Body) {
		return record{}, fmt.Errorf("document %s: body is not valid JSON", d.ID)
	}
	return record{ID: d.ID, Slug: d.Slug, Body: string(d.Body), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}, nil
}

func fromRecord(r record) domain.Document {
	return domain.Document{
		ID:        r.ID,
		Slug:      r.Slug,
		Body:      json.RawMessage(r.Body),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func (s *Store) Insert(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	d.UpdatedAt = d.CreatedAt
	rec, err := toRecord(d)
	if err != nil {
		return domain.Document{}, err
	}
	if _, err := s.db.Collection(coll).InsertOne(ctx, rec); err != nil {
		return domain.Document{}, fmt.Errorf("insert %s: %w", coll, mapErr(err))
	}
	return d, nil
}

func (s *Store) findOne(ctx context.Context, coll string, filter bson.D) (domain.Document, error) {
	var rec record
	if err := s.db.Collection(coll).FindOne(ctx, filter).Decode(&rec); err != nil {
		return domain.Document{}, mapErr(err)
	}
	return fromRecord(rec), nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (domain.Document, error) {
	return s.findOne(ctx, coll, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) FindBySlug(ctx context.Context, coll, slug string) (domain.Document, error) {
	return s.findOne(ctx, coll, bson.D{{Key: "slug", Value: slug}})
}

func (s *Store) List(ctx context.Context, coll string) ([]domain.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(coll).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	var out []domain.Document
	for cur.Next(ctx) {
		var rec record
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, fromRecord(rec))
	}
	return out, cur.Err()
}

func (s *Store) Replace(ctx context.Context, coll string, d domain.Document) (domain.Document, error) {
	cur, err := s.Get(ctx, coll, d.ID)
	if err != nil {
		return domain.Document{}, err
	}
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = s.now()
	rec, err := toRecord(d)
	if err != nil {
		return domain.Document{}, err
	}
	res, err := s.db.Collection(coll).ReplaceOne(ctx, bson.D{{Key: "_id", Value: d.ID}}, rec)
	if err != nil {
		return domain.Document{}, fmt.Errorf("replace %s/%s: %w", coll, d.ID, mapErr(err))
	}
	if res.MatchedCount == 0 {
		return domain.Document{}, domain.ErrNotFound
	}
	return d, nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx domain.DocumentStore) error) error {
	s.tx.Lock()
	defer s.tx.Unlock()
	return fn(ctx, s)
}

// ---- users ----

func toUser(r userRecord) domain.User {
	u := domain.User{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt.UTC()}
	if role, ok := domain.ParseRole(r.Role); ok {
		u.Role = domain.Some(role)
	}
	return u
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	u.Email = strings.ToLower(u.Email)
	role, _ := u.Role.Get()
	rec := userRecord{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Role: string(role), CreatedAt: u.CreatedAt}
	if _, err := s.db.Collection(usersColl).InsertOne(ctx, rec); err != nil {
		return domain.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (domain.User, error) {
	var rec userRecord
	if err := s.db.Collection(usersColl).FindOne(ctx, filter).Decode(&rec); err != nil {
		return domain.User{}, mapErr(err)
	}
	return toUser(rec), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: strings.ToLower(email)}})
}

func (s *Store) SetUserRole(ctx context.Context, id string, role domain.Option[domain.Role]) (domain.User, error) {
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "role", Value: ""}}}}
	if r, ok := role.Get(); ok {
		update = bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: string(r)}}}}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rec userRecord
	err := s.db.Collection(usersColl).
		FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).
		Decode(&rec)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	return toUser(rec), nil
}
