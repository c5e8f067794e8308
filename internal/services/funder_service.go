package services

import (
	"context"
	"fmt"
	"strings"

	"budgetflow/internal/amqp"
	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/store"
)

type FunderService struct {
	store     store.FunderStore
	publisher ChangePublisher
	logger    *log.Logger
}

func NewFunderService(st store.FunderStore, publisher ChangePublisher, logger *log.Logger) *FunderService {
	return &FunderService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

func (s *FunderService) List(ctx context.Context) ([]core.Funder, error) {
	return s.store.ListFunders(ctx)
}

func (s *FunderService) Get(ctx context.Context, id string) (*core.Funder, error) {
	return s.store.GetFunder(ctx, id)
}

func (s *FunderService) Create(ctx context.Context, f core.Funder) (core.Funder, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	if err := f.Validate(); err != nil {
		return core.Funder{}, err
	}

	created, err := s.store.CreateFunder(ctx, f)
	if err != nil {
		return core.Funder{}, fmt.Errorf("create funder: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *FunderService) Update(ctx context.Context, id string, p store.FunderPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return core.ErrEmptyName
		}
		p.Name = &name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		p.Phone = &phone
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		p.Email = &email
	}

	if err := s.store.UpdateFunder(ctx, id, p); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ActionUpdated)
	return nil
}

// Delete removes the funder. Expenses that reference it keep the dangling
// id; the dashboard and report fall back to "Not Assigned".
func (s *FunderService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteFunder(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *FunderService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, amqp.CollectionFunders, id, action); err != nil {
		s.logger.WarnContext(ctx, "publish change event failed",
			log.FieldCollection, amqp.CollectionFunders,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
}
