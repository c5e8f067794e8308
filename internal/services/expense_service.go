package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetflow/internal/amqp"
	"budgetflow/internal/core"
	"budgetflow/internal/log"
	"budgetflow/internal/store"
)

// ErrUnknownCategory is returned when an expense names a category id that
// does not exist. Only writes are checked; existing expenses may dangle
// after a category deletion.
var ErrUnknownCategory = errors.New("unknown category")

type ExpenseService struct {
	store     store.Store
	publisher ChangePublisher
	logger    *log.Logger
}

func NewExpenseService(st store.Store, publisher ChangePublisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

func (s *ExpenseService) List(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, f)
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Notes = core.StripHTML(e.Notes)
	if e.Status == "" {
		e.Status = core.StatusOutstanding
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.checkCategory(ctx, e.CategoryID); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "expense created",
		log.FieldRecordID, created.ID,
		log.FieldTitle, created.Title,
		log.FieldAmount, created.Amount.Paise,
		log.FieldStatus, string(created.Status))
	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, id string, p store.ExpensePatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return core.ErrEmptyTitle
		}
		p.Title = &title
	}
	if p.Amount != nil {
		if p.Amount.Paise <= 0 {
			return core.ErrInvalidAmount
		}
		if p.Amount.Paise > core.MaxAmount {
			return core.ErrAmountTooLarge
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return core.ErrInvalidStatus
	}
	if p.Notes != nil {
		notes := core.StripHTML(*p.Notes)
		if len(notes) > core.MaxNotesLen {
			return core.ErrNotesTooLong
		}
		p.Notes = &notes
	}
	if p.CategoryID != nil {
		if strings.TrimSpace(*p.CategoryID) == "" {
			return core.ErrMissingCategory
		}
		if err := s.checkCategory(ctx, *p.CategoryID); err != nil {
			return err
		}
	}

	if err := s.store.UpdateExpense(ctx, id, p); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.ActionUpdated)
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *ExpenseService) checkCategory(ctx context.Context, id string) error {
	_, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUnknownCategory
	}
	return err
}

func (s *ExpenseService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, amqp.CollectionExpenses, id, action); err != nil {
		// Store write already succeeded; the worker catches up later.
		s.logger.WarnContext(ctx, "publish change event failed",
			log.FieldCollection, amqp.CollectionExpenses,
			log.FieldRecordID, id,
			log.FieldError, err)
	}
}
