package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jucampus/registrar-api/internal/models"
)

// AuditRepository writes admin activity into the admin_logs collection.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection("admin_logs")}
}

// Insert appends an audit entry.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Recent returns the newest entries up to limit.
func (r *AuditRepository) Recent(ctx context.Context, limit int64) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck

	var entries []models.AuditLog
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode audit logs: %w", err)
	}
	return entries, nil
}
