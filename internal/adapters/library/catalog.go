package library

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// DefaultPageSize is used when List is called with a non-positive limit.
const DefaultPageSize = 20

// ErrInvalidCursor is returned when a List cursor was not produced by List.
var ErrInvalidCursor = errors.New("invalid page cursor")

//go:embed programs/*.yaml
var builtinFS embed.FS

// Catalog is an in-memory program library built from the embedded
// programs and an optional user directory.
type Catalog struct {
	programs []*domain.Program
	byID     map[string]*domain.Program
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*catalogOptions)

type catalogOptions struct {
	dir      string
	builtins bool
	logger   *slog.Logger
}

// WithDir also loads every *.yaml and *.yml file in dir. A missing
// directory is not an error.
func WithDir(dir string) Option {
	return func(o *catalogOptions) { o.dir = dir }
}

// WithoutBuiltins skips the embedded programs.
func WithoutBuiltins() Option {
	return func(o *catalogOptions) { o.builtins = false }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New loads the catalog. Programs that fail validation are skipped and
// logged; aggregate mismatches are logged and the program is kept. A user
// program replaces a built-in one with the same ID.
func New(opts ...Option) (*Catalog, error) {
	o := catalogOptions{
		builtins: true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Catalog{byID: make(map[string]*domain.Program), logger: o.logger}

	if o.builtins {
		if err := c.loadFS(builtinFS, "programs", "builtin"); err != nil {
			return nil, err
		}
	}
	if o.dir != "" {
		if _, err := os.Stat(o.dir); err == nil {
			if err := c.loadFS(os.DirFS(o.dir), ".", o.dir); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to open programs dir: %w", err)
		}
	}

	sort.SliceStable(c.programs, func(i, j int) bool {
		return c.programs[i].ID < c.programs[j].ID
	})
	return c, nil
}

func (c *Catalog) loadFS(fsys fs.FS, dir, origin string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to list %s programs: %w", origin, err)
	}

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		name := path.Join(dir, entry.Name())

		f, err := fsys.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
		p, err := Decode(f)
		_ = f.Close()
		if err != nil {
			c.logger.Error("skipping program", "origin", origin, "file", entry.Name(), "error", err)
			continue
		}
		c.add(p, origin, entry.Name())
	}
	return nil
}

func (c *Catalog) add(p *domain.Program, origin, file string) {
	warnings, err := domain.ValidateProgram(p)
	if err != nil {
		c.logger.Error("skipping invalid program", "origin", origin, "file", file, "program", p.ID, "error", err)
		return
	}
	for _, w := range warnings {
		c.logger.Warn("program aggregate mismatch",
			"program", w.ProgramID, "field", w.Field, "declared", w.Declared, "computed", w.Computed)
	}

	if old, ok := c.byID[p.ID]; ok {
		c.logger.Info("program overridden", "program", p.ID, "origin", origin)
		for i := range c.programs {
			if c.programs[i] == old {
				c.programs[i] = p
			}
		}
	} else {
		c.programs = append(c.programs, p)
	}
	c.byID[p.ID] = p
}

// Len returns the number of loaded programs.
func (c *Catalog) Len() int {
	return len(c.programs)
}

// List implements ports.ProgramCatalog.
func (c *Catalog) List(ctx context.Context, cursor string, limit int) (*ports.ProgramPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n > len(c.programs) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
		}
		offset = n
	}

	end := offset + limit
	if end > len(c.programs) {
		end = len(c.programs)
	}

	page := &ports.ProgramPage{
		Programs: append([]*domain.Program(nil), c.programs[offset:end]...),
	}
	if end < len(c.programs) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

// Get implements ports.ProgramCatalog.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProgramNotFound, id)
	}
	return p, nil
}

// Search implements ports.ProgramCatalog. An empty query returns every program.
func (c *Catalog) Search(ctx context.Context, query string) ([]*domain.Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]*domain.Program(nil), c.programs...), nil
	}

	matches := fuzzy.FindFrom(query, searchSource(c.programs))

	result := make([]*domain.Program, 0, len(matches))
	for _, match := range matches {
		result = append(result, c.programs[match.Index])
	}
	return result, nil
}

// searchSource exposes title and tags to the fuzzy matcher.
type searchSource []*domain.Program

func (s searchSource) String(i int) string {
	return s[i].Title + " " + strings.Join(s[i].Tags, " ")
}

func (s searchSource) Len() int {
	return len(s)
}

var _ ports.ProgramCatalog = (*Catalog)(nil)
