package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moviereview/internal/auth"
	"moviereview/internal/domain/movies"
)

var (
	ErrValidation = errors.New("invalid movie")
	ErrForbidden  = errors.New("forbidden: admins only")
)

// NewMovie carries the fields an admin supplies when adding a movie.
type NewMovie struct {
	Title       string
	Genre       string
	ReleaseDate time.Time
	Description string
	PosterURL   string
	Rating      *float64
}

type Catalog struct {
	movies movies.Store
}

func New(store movies.Store) *Catalog {
	return &Catalog{movies: store}
}

// List returns every movie, newest first.
func (c *Catalog) List(ctx context.Context) ([]movies.Movie, error) {
	return c.movies.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, id string) (*movies.Movie, error) {
	return c.movies.GetByID(ctx, id)
}

func (c *Catalog) Create(ctx context.Context, in NewMovie, p auth.Principal) (*movies.Movie, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	m := &movies.Movie{
		Title:       strings.TrimSpace(in.Title),
		Genre:       strings.TrimSpace(in.Genre),
		ReleaseDate: in.ReleaseDate,
		Description: strings.TrimSpace(in.Description),
		PosterURL:   strings.TrimSpace(in.PosterURL),
	}
	if in.Rating != nil {
		m.Rating = *in.Rating
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", m.Title},
		{"genre", m.Genre},
		{"description", m.Description},
		{"posterUrl", m.PosterURL},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if m.ReleaseDate.IsZero() {
		missing = append(missing, "releaseDate")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if m.Rating < 0 {
		return nil, fmt.Errorf("%w: rating must not be negative", ErrValidation)
	}

	if err := c.movies.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the movie and its embedded comments, returning what was deleted.
func (c *Catalog) Delete(ctx context.Context, id string, p auth.Principal) (*movies.Movie, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return c.movies.Delete(ctx, id)
}
