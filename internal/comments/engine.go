// Package comments owns the lifecycle and authorization rules of the comments
// embedded in a movie. All mutations go through movies.Store's atomic comment
// operations; the engine never writes back a whole comment collection.
package comments

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"moviereview/internal/auth"
	"moviereview/internal/domain/admins"
	"moviereview/internal/domain/movies"
	"moviereview/internal/domain/users"

	"github.com/google/uuid"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxTextLength = 1000
)

var (
	ErrValidation      = errors.New("invalid comment")
	ErrForbidden       = errors.New("not allowed to modify this comment")
	ErrUnauthenticated = errors.New("authentication required")
)

// Directory resolves the display name snapshotted into new comments.
type Directory interface {
	DisplayName(ctx context.Context, p auth.Principal) (string, error)
}

type Engine struct {
	movies movies.Store
	dir    Directory
	now    func() time.Time
	newID  func() string
}

func NewEngine(store movies.Store, dir Directory) *Engine {
	return &Engine{
		movies: store,
		dir:    dir,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Validate trims text and checks both fields, returning the trimmed text.
func Validate(text string, rating int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: comment text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", fmt.Errorf("%w: comment text must be at most %d characters", ErrValidation, MaxTextLength)
	}
	if rating < MinRating || rating > MaxRating {
		return "", fmt.Errorf("%w: rating must be a number between %d and %d", ErrValidation, MinRating, MaxRating)
	}
	return text, nil
}

func authenticated(p auth.Principal) error {
	if p.ID == "" || (p.Kind != auth.KindUser && p.Kind != auth.KindAdmin) {
		return ErrUnauthenticated
	}
	return nil
}

// AddComment places a new comment at the head of the movie's comment sequence.
func (e *Engine) AddComment(ctx context.Context, movieID string, p auth.Principal, text string, rating int) (*movies.Movie, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	text, err := Validate(text, rating)
	if err != nil {
		return nil, err
	}

	name, err := e.dir.DisplayName(ctx, p)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) || errors.Is(err, admins.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, err
	}

	c := movies.Comment{
		ID:             e.newID(),
		Text:           text,
		Rating:         rating,
		AuthorID:       p.ID,
		AuthorUsername: name,
		CreatedAt:      e.now(),
	}
	return e.movies.PrependComment(ctx, movieID, c)
}

// EditComment is reserved to the comment's author; admins get no override here.
func (e *Engine) EditComment(ctx context.Context, movieID, commentID string, p auth.Principal, text string, rating int) (*movies.Movie, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}
	text, err := Validate(text, rating)
	if err != nil {
		return nil, err
	}

	c, err := e.find(ctx, movieID, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != p.ID {
		return nil, ErrForbidden
	}

	return e.movies.UpdateComment(ctx, movieID, commentID, movies.CommentPatch{
		Text:      text,
		Rating:    rating,
		UpdatedAt: e.now(),
	})
}

// DeleteComment is allowed for the author and for any admin.
func (e *Engine) DeleteComment(ctx context.Context, movieID, commentID string, p auth.Principal) (*movies.Movie, error) {
	if err := authenticated(p); err != nil {
		return nil, err
	}

	c, err := e.find(ctx, movieID, commentID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && c.AuthorID != p.ID {
		return nil, ErrForbidden
	}

	return e.movies.RemoveComment(ctx, movieID, commentID)
}

// ListComments returns the movie's comments newest first.
func (e *Engine) ListComments(ctx context.Context, movieID string) ([]movies.Comment, error) {
	m, err := e.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	list := slices.Clone(m.Comments)
	if list == nil {
		list = []movies.Comment{}
	}
	slices.SortStableFunc(list, func(a, b movies.Comment) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return list, nil
}

func (e *Engine) find(ctx context.Context, movieID, commentID string) (*movies.Comment, error) {
	m, err := e.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	c, ok := m.FindComment(commentID)
	if !ok {
		return nil, movies.ErrCommentNotFound
	}
	return c, nil
}
