package ports

import (
	"context"

	"github.com/xvierd/trainer-cli/internal/domain"
)

// ProgramPage is one page of the content library.
type ProgramPage struct {
	Programs []*domain.Program
	// NextCursor loads the following page; empty when there is none.
	NextCursor string
}

// ProgramCatalog is the content-library contract: a list plus a
// "load more" cursor. This is a driven port (implemented by adapters).
type ProgramCatalog interface {
	// List returns up to limit programs starting at cursor ("" for the first page).
	List(ctx context.Context, cursor string, limit int) (*ProgramPage, error)

	// Get returns one program by ID.
	Get(ctx context.Context, id string) (*domain.Program, error)

	// Search returns programs whose title or tags match query, best first.
	Search(ctx context.Context, query string) ([]*domain.Program, error)
}
