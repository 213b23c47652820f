package plan

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=plan
type Repository interface {
	LoadItems(ctx context.Context) ([]Item, error)
	SaveItems(ctx context.Context, items []Item) error
}

// Service owns the in-memory plan. Every change is persisted before it becomes visible.
type Service struct {
	repo Repository

	mu    sync.Mutex
	items []Item
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Load(ctx context.Context) error {
	items, err := s.repo.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items

	return nil
}

// Items returns a copy of the plan, newest first.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

// Add puts a new item at the top of the plan.
func (s *Service) Add(ctx context.Context, name string, quantity int) (Item, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return Item{}, fmt.Errorf("%w: name is required", ErrValidation)
	case quantity < 1:
		return Item{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	item := Item{ID: uuid.New(), Name: capitalize(name), Quantity: quantity}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, slices.Insert(slices.Clone(s.items), 0, item)); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Adjust changes an item's quantity by delta. Quantities never drop below 1.
func (s *Service) Adjust(ctx context.Context, id uuid.UUID, delta int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, ErrNotFound
	}

	next := slices.Clone(s.items)
	next[idx].Quantity = max(1, next[idx].Quantity+delta)

	if err := s.commit(ctx, next); err != nil {
		return Item{}, err
	}

	return next[idx], nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	return s.commit(ctx, slices.Delete(slices.Clone(s.items), idx, idx+1))
}

func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, nil)
}

// Finalize hands the plan over to a ledger flow. The plan itself is kept so
// it can be ticked off while shopping.
func (s *Service) Finalize(mode Mode) (Handoff, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Handoff{}, err
	}

	items := s.Items()
	if len(items) == 0 {
		return Handoff{}, ErrEmpty
	}

	return Handoff{Mode: mode, Items: items}, nil
}

func (s *Service) commit(ctx context.Context, next []Item) error {
	if err := s.repo.SaveItems(ctx, next); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	s.items = next

	return nil
}

func (s *Service) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.items, func(item Item) bool { return item.ID == id })
}
