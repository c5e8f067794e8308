// Package services holds the write-side business rules: input trimming
// and validation, referential checks, and change-event publication.
// Reads go straight to the store; the dashboard reads from the
// reconciler's view instead.
package services

import (
	"context"

	"budgetflow/internal/amqp"
)

// ChangePublisher announces record mutations. A nil publisher disables
// announcements; a failed publish never fails the mutation itself.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, collection, id, action string) error
}

var _ ChangePublisher = (*amqp.Client)(nil)
