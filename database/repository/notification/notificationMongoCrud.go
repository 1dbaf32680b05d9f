// File: database/repository/notification/notificationMongoCrud.go
package notifRepo

import (
	"fmt"
	"time"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new notification document after validating required fields.
func (r *MongoNotificationRepo) Create(n *models.Notification) error {
	if n.UserID == 0 {
		return fmt.Errorf("%w: missing recipient user id", ErrInvalid)
	}
	if !models.ValidKind(n.Kind) {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalid, n.Kind)
	}
	if n.Title == "" || n.Body == "" {
		return fmt.Errorf("%w: title and body are required", ErrInvalid)
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// GetByID retrieves a notification by its hex id.
func (r *MongoNotificationRepo) GetByID(id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &n, nil
}

// MarkRead transitions a notification to read exactly once. The conditional
// filter keeps the read_at timestamp stable under concurrent calls.
func (r *MongoNotificationRepo) MarkRead(id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"read": true, "read_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "read": false}, update, opts).Decode(&n)
	if err == nil {
		return &n, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// No unread document matched: either already read (no-op) or absent.
	return r.GetByID(id)
}

// MarkUnread reverts a notification to unread, clearing the read timestamp
// so the read/read_at pairing stays consistent.
func (r *MongoNotificationRepo) MarkUnread(id string) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"read": false}, "$unset": bson.M{"read_at": ""}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "read": true}, update, opts).Decode(&n)
	if err == nil {
		return &n, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return r.GetByID(id)
}

// UpdateContent applies a partial edit to the mutable content fields.
func (r *MongoNotificationRepo) UpdateContent(id string, title, body *string, extra map[string]any) (*models.Notification, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{}
	if title != nil {
		if *title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
		}
		set["title"] = *title
	}
	if body != nil {
		if *body == "" {
			return nil, fmt.Errorf("%w: body cannot be empty", ErrInvalid)
		}
		set["body"] = *body
	}
	if extra != nil {
		set["extra_data"] = extra
	}
	if len(set) == 0 {
		return r.GetByID(id)
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var n models.Notification
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&n)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &n, nil
}

// MarkAllRead marks every unread notification of the recipient as read.
// UpdateMany applies the condition per document, so two racing callers never
// double-count the same record.
func (r *MongoNotificationRepo) MarkAllRead(userID int64) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true, "read_at": now}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result.ModifiedCount, nil
}

// Delete removes a notification document by its hex id.
func (r *MongoNotificationRepo) Delete(id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
