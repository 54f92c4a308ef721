package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"notification-relay/internal/broker"
)

// DeliveryLogRepo persists one row per consumed message so operators can
// audit what was delivered and what went to a DLQ.
type DeliveryLogRepo struct {
	db *pgxpool.Pool
}

func NewDeliveryLogRepo(db *pgxpool.Pool) *DeliveryLogRepo {
	return &DeliveryLogRepo{db: db}
}

func (r *DeliveryLogRepo) RecordDelivery(ctx context.Context, rec broker.DeliveryRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO delivery_logs (queue_name, channel, recipient, success, error_detail, dlq_forwarded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, rec.Queue, rec.Channel, rec.Recipient, rec.Success, rec.ErrorDetail, rec.DLQForwarded)
	return err
}
