// Package mongostore implements the stores on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

const (
	colOrganizations = "organizations"
	colUsers         = "users"
	colEmployees     = "employees"
	colSubscriptions = "subscriptions"
)

// Store is a MongoDB-backed implementation of the account, employee and
// subscription stores.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri, verifies the connection and ensures indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colEmployees: {
			{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		colSubscriptions: {
			{Keys: bson.D{{Key: "organizationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// CreateAccount inserts the organization, user and subscription in order.
// Standalone servers have no multi-document transactions, so a failed later
// insert deletes the documents already written.
func (s *Store) CreateAccount(ctx context.Context, org *domain.Organization, user *domain.User, sub *domain.Subscription) error {
	orgs := s.db.Collection(colOrganizations)
	users := s.db.Collection(colUsers)
	subs := s.db.Collection(colSubscriptions)
	cleanupCtx := context.WithoutCancel(ctx)

	if _, err := orgs.InsertOne(ctx, organizationDoc{
		ID: org.ID.String(), Name: org.Name, CreatedAt: org.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	if _, err := users.InsertOne(ctx, userDoc{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		Password:       user.PasswordHash,
		Role:           user.Role,
		OrganizationID: user.OrganizationID.String(),
		CreatedAt:      user.CreatedAt,
	}); err != nil {
		_, _ = orgs.DeleteOne(cleanupCtx, bson.M{"_id": org.ID.String()})
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	activities := sub.Activities
	if activities == nil {
		activities = []string{}
	}
	if _, err := subs.InsertOne(ctx, subscriptionDoc{
		OrganizationID: sub.OrganizationID.String(),
		Activities:     activities,
		CreatedAt:      sub.CreatedAt,
	}); err != nil {
		_, _ = users.DeleteOne(cleanupCtx, bson.M{"_id": user.ID.String()})
		_, _ = orgs.DeleteOne(cleanupCtx, bson.M{"_id": org.ID.String()})
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// GetUserByEmail returns the user with the given normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDoc
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

// ExistsByEmail reports whether a user with the email exists.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.db.Collection(colUsers).CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListEmployees returns the organization's employees oldest first.
func (s *Store) ListEmployees(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(colEmployees).Find(ctx, bson.M{"organizationId": orgID.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	employees := []domain.Employee{}
	for cur.Next(ctx) {
		var doc employeeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		e, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, cur.Err()
}

// GetEmployee returns an employee owned by orgID.
func (s *Store) GetEmployee(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	var doc employeeDoc
	err := s.db.Collection(colEmployees).FindOne(ctx, employeeFilter(orgID, id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

// CreateEmployee inserts an employee.
func (s *Store) CreateEmployee(ctx context.Context, e *domain.Employee) error {
	_, err := s.db.Collection(colEmployees).InsertOne(ctx, employeeDoc{
		ID:             e.ID.String(),
		Name:           e.Name,
		Role:           e.Role,
		ImageURLs:      e.ImageURLs,
		OrganizationID: e.OrganizationID.String(),
		CreatedAt:      e.CreatedAt,
	})
	return err
}

// UpdateEmployee applies the non-empty fields of upd to an employee owned by orgID.
func (s *Store) UpdateEmployee(ctx context.Context, orgID, id uuid.UUID, upd domain.EmployeeUpdate, updatedAt time.Time) error {
	set := bson.M{"updatedAt": updatedAt}
	if upd.Name != nil && *upd.Name != "" {
		set["name"] = *upd.Name
	}
	if upd.Role != nil && *upd.Role != "" {
		set["role"] = *upd.Role
	}
	if len(upd.ImageURLs) > 0 {
		set["imageUrls"] = upd.ImageURLs
	}

	res, err := s.db.Collection(colEmployees).UpdateOne(ctx, employeeFilter(orgID, id), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// DeleteEmployee removes an employee owned by orgID.
func (s *Store) DeleteEmployee(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := s.db.Collection(colEmployees).DeleteOne(ctx, employeeFilter(orgID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// GetSubscription returns the organization's subscription.
func (s *Store) GetSubscription(ctx context.Context, orgID uuid.UUID) (*domain.Subscription, error) {
	var doc subscriptionDoc
	err := s.db.Collection(colSubscriptions).FindOne(ctx, bson.M{"organizationId": orgID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(orgID), nil
}

// UpsertSubscription creates the subscription or replaces its activities.
func (s *Store) UpsertSubscription(ctx context.Context, orgID uuid.UUID, activities []string, now time.Time) error {
	if activities == nil {
		activities = []string{}
	}
	update := bson.M{
		"$set":         bson.M{"activities": activities, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := s.db.Collection(colSubscriptions).UpdateOne(ctx,
		bson.M{"organizationId": orgID.String()}, update, options.Update().SetUpsert(true))
	return err
}

func employeeFilter(orgID, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "organizationId": orgID.String()}
}
