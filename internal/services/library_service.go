package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// LibraryService handles program browsing use cases.
type LibraryService struct {
	catalog ports.ProgramCatalog
	prefs   ports.PreferenceRepository
}

// NewLibraryService creates a new library service. prefs may be nil.
func NewLibraryService(catalog ports.ProgramCatalog, prefs ports.PreferenceRepository) *LibraryService {
	return &LibraryService{catalog: catalog, prefs: prefs}
}

// List returns one page of programs.
func (s *LibraryService) List(ctx context.Context, cursor string, limit int) (*ports.ProgramPage, error) {
	page, err := s.catalog.List(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	return page, nil
}

// All follows the cursor until the catalog is exhausted.
func (s *LibraryService) All(ctx context.Context) ([]*domain.Program, error) {
	var all []*domain.Program
	cursor := ""
	for {
		page, err := s.List(ctx, cursor, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Programs...)
		if page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// Get returns a program by ID.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.Program, error) {
	return s.catalog.Get(ctx, id)
}

// Search returns programs matching query, best first.
func (s *LibraryService) Search(ctx context.Context, query string) ([]*domain.Program, error) {
	programs, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search programs: %w", err)
	}
	return programs, nil
}

// LastProgram returns the program of the last finished workout, or nil if
// there is none or it no longer exists.
func (s *LibraryService) LastProgram(ctx context.Context) (*domain.Program, error) {
	if s.prefs == nil {
		return nil, nil
	}
	id, ok, err := s.prefs.Get(ctx, PrefLastProgram)
	if err != nil {
		return nil, fmt.Errorf("failed to read last program: %w", err)
	}
	if !ok {
		return nil, nil
	}

	p, err := s.catalog.Get(ctx, id)
	if errors.Is(err, domain.ErrProgramNotFound) {
		return nil, nil
	}
	return p, err
}

// Resolve finds a program by exact ID, falling back to the best search hit.
func (s *LibraryService) Resolve(ctx context.Context, ref string) (*domain.Program, error) {
	p, err := s.catalog.Get(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProgramNotFound) {
		return nil, err
	}

	hits, err := s.Search(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProgramNotFound, ref)
	}
	return hits[0], nil
}
