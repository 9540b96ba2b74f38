package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Source supplies the current fixture set. Implementations must be safe for
// concurrent use; callers treat the returned Fixtures as read-only.
type Source interface {
	Name() string
	Fixtures() *Fixtures
}

// Source names accepted by configuration.
const (
	SourceStatic = "static"
	SourceFile   = "file"
)

// StaticSource serves the fixtures compiled into the binary.
type StaticSource struct {
	fixtures *Fixtures
}

// NewStaticSource returns a source backed by DefaultFixtures.
func NewStaticSource() *StaticSource {
	return &StaticSource{fixtures: DefaultFixtures()}
}

// Name implements Source.
func (s *StaticSource) Name() string { return SourceStatic }

// Fixtures implements Source.
func (s *StaticSource) Fixtures() *Fixtures { return s.fixtures }

// Validate checks that ids and slugs are unique and parents exist.
func (f *Fixtures) Validate() error {
	var err error

	bannerIDs := make(map[int]struct{}, len(f.Banners))
	for _, b := range f.Banners {
		if _, dup := bannerIDs[b.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate banner id %d", b.ID))
		}
		bannerIDs[b.ID] = struct{}{}
		if strings.TrimSpace(b.Title) == "" {
			err = multierr.Append(err, fmt.Errorf("banner %d: title is required", b.ID))
		}
	}

	categoryIDs := make(map[int]struct{}, len(f.Categories))
	slugs := make(map[string]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if _, dup := categoryIDs[c.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate category id %d", c.ID))
		}
		categoryIDs[c.ID] = struct{}{}

		slug := strings.ToLower(strings.TrimSpace(c.Slug))
		if slug == "" {
			err = multierr.Append(err, fmt.Errorf("category %d: slug is required", c.ID))
			continue
		}
		if _, dup := slugs[slug]; dup {
			err = multierr.Append(err, fmt.Errorf("duplicate category slug %q", c.Slug))
		}
		slugs[slug] = struct{}{}
	}
	for _, c := range f.Categories {
		if c.ParentID == nil {
			continue
		}
		if _, ok := categoryIDs[*c.ParentID]; !ok {
			err = multierr.Append(err, fmt.Errorf("category %d: unknown parent %d", c.ID, *c.ParentID))
		}
	}

	return err
}
