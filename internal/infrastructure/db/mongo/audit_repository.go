package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository appends audit events to the audit_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

var _ ports.AuditSink = (*AuditRepository)(nil)

// Record persists a single event.
func (r *AuditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"type":        string(event.Type),
		"username":    event.Username,
		"success":     event.Success,
		"occurred_at": event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.SubjectID != 0 {
		doc["subject_id"] = event.SubjectID
	}
	if event.ActorID != 0 {
		doc["actor_id"] = event.ActorID
	}
	if event.RequestID != "" {
		doc["request_id"] = event.RequestID
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
