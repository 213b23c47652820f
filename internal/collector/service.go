package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/importer"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=collector
type Repository interface {
	LoadRecords(ctx context.Context) ([]Record, error)
	SaveRecords(ctx context.Context, records []Record) error
}

// Uploader receives records; the secondary catalog collection implements it.
type Uploader interface {
	Create(ctx context.Context, u catalog.Upload) error
}

type Service struct {
	repo     Repository
	known    catalog.Source
	uploader Uploader

	// uploadMu keeps uploads from overlapping; mu guards records only.
	uploadMu sync.Mutex
	mu       sync.Mutex
	records  []Record
}

// NewService wires the collector. known is consulted before each upload so
// products the primary catalog already has are not duplicated.
func NewService(repo Repository, known catalog.Source, uploader Uploader) *Service {
	return &Service{repo: repo, known: known, uploader: uploader}
}

func (s *Service) Load(ctx context.Context) error {
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records

	return nil
}

func (s *Service) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.records)
}

func (s *Service) Add(ctx context.Context, p Params) (Record, error) {
	p, err := validate(p)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{ID: uuid.New(), Barcode: p.Barcode, Name: p.Name, Price: p.Price}

	if err := s.commit(ctx, append(slices.Clone(s.records), rec)); err != nil {
		return Record{}, err
	}

	return rec, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p Params) (Record, error) {
	p, err := validate(p)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Record{}, ErrNotFound
	}

	rec := Record{ID: id, Barcode: p.Barcode, Name: p.Name, Price: p.Price}

	next := slices.Clone(s.records)
	next[idx] = rec

	if err := s.commit(ctx, next); err != nil {
		return Record{}, err
	}

	return rec, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}

	return s.commit(ctx, slices.Delete(slices.Clone(s.records), idx, idx+1))
}

func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, nil)
}

// Import appends every row of a CSV export. Nothing is added if any row is invalid.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := importer.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.records)

	for i, row := range rows {
		p, err := validate(Params{Barcode: row.Barcode, Name: row.Name, Price: row.Price})
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}

		next = append(next, Record{ID: uuid.New(), Barcode: p.Barcode, Name: p.Name, Price: p.Price})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}

	return len(rows), nil
}

// Upload sends records one at a time. Each sent record is removed from the
// local list as soon as it is accepted. The first rejected POST stops the
// upload; the partial report is returned along with the error. The list stays
// readable and editable while requests are in flight.
func (s *Service) Upload(ctx context.Context) (Report, error) {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	var report Report

	for _, rec := range s.List() {
		if err := ctx.Err(); err != nil {
			return s.withPending(report), err
		}

		if s.isKnown(ctx, rec.Barcode) {
			report.Skipped = append(report.Skipped, rec)
			continue
		}

		err := s.uploader.Create(ctx, catalog.Upload{Barcode: rec.Barcode, Name: rec.Name, Price: rec.Price})
		if err != nil {
			return s.withPending(report), fmt.Errorf("uploading %s: %w", rec.Barcode, err)
		}

		report.Sent = append(report.Sent, rec)

		if err := s.drop(ctx, rec.ID); err != nil {
			return s.withPending(report), err
		}
	}

	return report, nil
}

// drop removes an uploaded record. A record deleted meanwhile is already gone.
func (s *Service) drop(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	return s.commit(ctx, slices.Delete(slices.Clone(s.records), idx, idx+1))
}

// withPending counts the local records still waiting to be sent.
func (s *Service) withPending(r Report) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Pending = 0

	for _, rec := range s.records {
		skipped := slices.ContainsFunc(r.Skipped, func(k Record) bool { return k.ID == rec.ID })
		if !skipped {
			r.Pending++
		}
	}

	return r
}

func (s *Service) isKnown(ctx context.Context, barcode string) bool {
	if s.known == nil {
		return false
	}

	_, err := s.known.Lookup(ctx, barcode)
	switch {
	case err == nil:
		return true
	case errors.Is(err, catalog.ErrNoMatch):
		return false
	default:
		slog.Warn("primary catalog check failed, uploading anyway", "barcode", barcode, "error", err)
		return false
	}
}

// commit persists next and only then replaces the in-memory list.
func (s *Service) commit(ctx context.Context, next []Record) error {
	if err := s.repo.SaveRecords(ctx, next); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}

	s.records = next

	return nil
}

func (s *Service) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
}

type validationError struct {
	field string
	msg   string
}

func (e *validationError) Error() string { return "invalid " + e.field + ": " + e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func validate(p Params) (Params, error) {
	p.Barcode = strings.TrimSpace(p.Barcode)
	p.Name = strings.TrimSpace(p.Name)

	switch {
	case p.Barcode == "":
		return p, &validationError{field: "barcode", msg: "is required"}
	case p.Name == "":
		return p, &validationError{field: "name", msg: "is required"}
	case p.Price != nil && p.Price.IsNegative():
		return p, &validationError{field: "price", msg: "must not be negative"}
	}

	return p, nil
}
