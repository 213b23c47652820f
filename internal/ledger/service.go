package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	LoadItems(ctx context.Context) ([]*LineItem, error)
	SaveItems(ctx context.Context, items []*LineItem) error
	LoadCeiling(ctx context.Context) (*decimal.Decimal, error)
	SaveCeiling(ctx context.Context, ceiling *decimal.Decimal) error
}

// Service is the in-memory ledger. State is read once by Load and written
// through the Repository on every mutation; a failed write leaves memory untouched.
type Service struct {
	repo   Repository
	policy Policy
	now    func() time.Time

	mu      sync.RWMutex
	items   []*LineItem
	ceiling *decimal.Decimal
}

func NewService(repo Repository, policy Policy) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		now:    time.Now,
	}
}

func (s *Service) Load(ctx context.Context) error {
	items, err := s.repo.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("loading items: %w", err)
	}

	ceiling, err := s.repo.LoadCeiling(ctx)
	if err != nil {
		return fmt.Errorf("loading ceiling: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.ceiling = ceiling

	return nil
}

// Add validates the draft and appends a new item to the end of the list.
func (s *Service) Add(ctx context.Context, d Draft) (*LineItem, error) {
	d, err := normalize(d)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.policy.RequireCeiling && s.ceiling == nil {
		return nil, ErrCeilingRequired
	}

	item := &LineItem{
		ID:        uuid.New(),
		Barcode:   d.Barcode,
		Name:      d.Name,
		UnitPrice: d.UnitPrice,
		Quantity:  d.Quantity,
		CreatedAt: s.now(),
	}

	next := append(slices.Clone(s.items), item)
	if err := s.repo.SaveItems(ctx, next); err != nil {
		return nil, fmt.Errorf("saving items: %w", err)
	}

	s.items = next

	return item.clone(), nil
}

// Update replaces every editable field of the item at once.
func (s *Service) Update(ctx context.Context, id uuid.UUID, d Draft) (*LineItem, error) {
	d, err := normalize(d)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := s.items[idx].clone()
	updated.Barcode = d.Barcode
	updated.Name = d.Name
	updated.UnitPrice = d.UnitPrice
	updated.Quantity = d.Quantity
	updated.UpdatedAt = new(s.now())

	next := slices.Clone(s.items)
	next[idx] = updated

	if err := s.repo.SaveItems(ctx, next); err != nil {
		return nil, fmt.Errorf("saving items: %w", err)
	}

	s.items = next

	return updated.clone(), nil
}

// Remove deletes the item. A missing id, including on an empty list, returns ErrNotFound.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	next := slices.Delete(slices.Clone(s.items), idx, idx+1)
	if err := s.repo.SaveItems(ctx, next); err != nil {
		return fmt.Errorf("saving items: %w", err)
	}

	s.items = next

	return nil
}

// ClearAll empties the list and unsets the ceiling. Callers confirm before calling it.
// If the ceiling cannot be cleared the previous items are written back and
// memory keeps both.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveItems(ctx, nil); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}

	if err := s.repo.SaveCeiling(ctx, nil); err != nil {
		if rerr := s.repo.SaveItems(ctx, s.items); rerr != nil {
			slog.Error("restoring items after failed clear", "error", rerr)
		}

		return fmt.Errorf("clearing ceiling: %w", err)
	}

	s.items = nil
	s.ceiling = nil

	return nil
}

// SetBudgetCeiling sets the ceiling; nil unsets it. Zero is legal.
func (s *Service) SetBudgetCeiling(ctx context.Context, ceiling *decimal.Decimal) error {
	if ceiling != nil && ceiling.IsNegative() {
		return &ValidationError{Field: "ceiling", Message: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next *decimal.Decimal
	if ceiling != nil {
		next = new(*ceiling)
	}

	if err := s.repo.SaveCeiling(ctx, next); err != nil {
		return fmt.Errorf("saving ceiling: %w", err)
	}

	s.ceiling = next

	return nil
}

func (s *Service) Items() []*LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}

	return out
}

func (s *Service) Get(id uuid.UUID) (*LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	return s.items[idx].clone(), nil
}

func (s *Service) Ceiling() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ceiling == nil {
		return decimal.Zero, false
	}

	return *s.ceiling, true
}

func (s *Service) AggregateTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.aggregate()
}

// Remaining is ceiling minus the aggregate total. It may be negative; the bool is false when no ceiling is set.
func (s *Service) Remaining() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ceiling == nil {
		return decimal.Zero, false
	}

	return s.ceiling.Sub(s.aggregate()), true
}

func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) aggregate() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}

	return total
}

func (s *Service) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.items, func(item *LineItem) bool {
		return item.ID == id
	})
}

func normalize(d Draft) (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Barcode = strings.TrimSpace(d.Barcode)

	switch {
	case d.Name == "":
		return d, &ValidationError{Field: "name", Message: "is required"}
	case !d.UnitPrice.IsPositive():
		return d, &ValidationError{Field: "unit price", Message: "must be greater than zero"}
	case d.Quantity <= 0:
		return d, &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}

	return d, nil
}
