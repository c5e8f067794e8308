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

type CategoryService struct {
	store     store.CategoryStore
	publisher ChangePublisher
	logger    *log.Logger
}

func NewCategoryService(st store.CategoryStore, publisher ChangePublisher, logger *log.Logger) *CategoryService {
	return &CategoryService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, p store.CategoryPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return core.ErrEmptyName
		}
		p.Name = &name
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		p.Description = &desc
	}

	if err := s.store.UpdateCategory(ctx, id, p); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ActionUpdated)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *CategoryService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, amqp.CollectionCategories, id, action); err != nil {
		// Mutation already committed; the worker catches up on the next event.
		s.logger.WarnContext(ctx, "publish change event failed",
			log.FieldCollection, amqp.CollectionCategories,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
}
