// File: database/repository/notification/notificationMongoQueries.go
package notifRepo

import (
	"fmt"
	"time"

	"learnhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByUser retrieves one page of a recipient's notifications, newest first.
// Ordering is created_at descending with _id descending as the tiebreak, so
// pages are stable even when timestamps collide.
func (r *MongoNotificationRepo) ListByUser(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	notifications := make([]models.Notification, 0, pageSize)
	for cursor.Next(ctx) {
		var n models.Notification
		if err := cursor.Decode(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for the recipient.
func (r *MongoNotificationRepo) CountUnread(userID int64) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return count, nil
}

// DeleteReadBefore removes read notifications created before the cutoff.
func (r *MongoNotificationRepo) DeleteReadBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := newContext(30 * time.Second)
	defer cancel()

	filter := bson.M{"read": true, "created_at": bson.M{"$lt": cutoff}}
	result, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result.DeletedCount, nil
}
