package movies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists movies. Every comment mutation is a single atomic statement
// against the movie row; callers never write back a full comment array.
type Store interface {
	List(context.Context) ([]Movie, error)
	GetByID(context.Context, string) (*Movie, error)
	Create(context.Context, *Movie) error
	Delete(context.Context, string) (*Movie, error)

	PrependComment(ctx context.Context, movieID string, c Comment) (*Movie, error)
	UpdateComment(ctx context.Context, movieID, commentID string, patch CommentPatch) (*Movie, error)
	RemoveComment(ctx context.Context, movieID, commentID string) (*Movie, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const movieColumns = `id, title, genre, release_date, description, poster_url, rating, comments, created_at, updated_at`

// position (0-based) of the first comment with id $2 in m.comments
const commentIndex = `(
	SELECT (e.ord - 1)::int
	FROM jsonb_array_elements(m.comments) WITH ORDINALITY AS e(c, ord)
	WHERE e.c->>'id' = $2
	ORDER BY e.ord
	LIMIT 1
)`

const hasComment = `m.comments @> jsonb_build_array(jsonb_build_object('id', $2::text))`

func scanMovie(row pgx.Row) (*Movie, error) {
	var m Movie
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Genre,
		&m.ReleaseDate,
		&m.Description,
		&m.PosterURL,
		&m.Rating,
		&m.Comments,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}
	return &m, nil
}

func (r *Repository) List(ctx context.Context) ([]Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	list := []Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		list = append(list, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Movie, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	m, err := scanMovie(r.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return m, nil
}

func (r *Repository) Create(ctx context.Context, m *Movie) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}

	query := `
		INSERT INTO movies (id, title, genre, release_date, description, poster_url, rating, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		m.ID,
		m.Title,
		m.Genre,
		m.ReleaseDate,
		m.Description,
		m.PosterURL,
		m.Rating,
		m.Comments,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create movie: %w", err)
	}
	return nil
}

// Delete removes the movie together with its embedded comments and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id string) (*Movie, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	m, err := scanMovie(r.db.QueryRow(ctx, `DELETE FROM movies WHERE id = $1 RETURNING `+movieColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete movie: %w", err)
	}
	return m, nil
}

func (r *Repository) PrependComment(ctx context.Context, movieID string, c Comment) (*Movie, error) {
	if _, err := uuid.Parse(movieID); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE movies m
		SET comments = jsonb_build_array($2::jsonb) || m.comments,
		    updated_at = now()
		WHERE m.id = $1
		RETURNING ` + movieColumns

	m, err := scanMovie(r.db.QueryRow(ctx, query, movieID, c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return m, nil
}

func (r *Repository) UpdateComment(ctx context.Context, movieID, commentID string, patch CommentPatch) (*Movie, error) {
	if _, err := uuid.Parse(movieID); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE movies m
		SET comments = jsonb_set(
		        m.comments,
		        ARRAY[` + commentIndex + `::text],
		        (m.comments -> ` + commentIndex + `) || $3::jsonb
		    ),
		    updated_at = now()
		WHERE m.id = $1 AND ` + hasComment + `
		RETURNING ` + movieColumns

	m, err := scanMovie(r.db.QueryRow(ctx, query, movieID, commentID, patch))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missing(ctx, movieID)
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return m, nil
}

func (r *Repository) RemoveComment(ctx context.Context, movieID, commentID string) (*Movie, error) {
	if _, err := uuid.Parse(movieID); err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
		UPDATE movies m
		SET comments = m.comments - ` + commentIndex + `,
		    updated_at = now()
		WHERE m.id = $1 AND ` + hasComment + `
		RETURNING ` + movieColumns

	m, err := scanMovie(r.db.QueryRow(ctx, query, movieID, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missing(ctx, movieID)
		}
		return nil, fmt.Errorf("remove comment: %w", err)
	}
	return m, nil
}

// missing tells apart an absent movie from an absent comment after a no-op update.
func (r *Repository) missing(ctx context.Context, movieID string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, movieID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check movie: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrCommentNotFound
}
