package movies

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps movies in process. One mutex guards every operation, which
// gives comment mutations the same atomicity as the Postgres statements.
type MemoryStore struct {
	mu     sync.Mutex
	movies map[string]*Movie
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{movies: make(map[string]*Movie), now: func() time.Time { return time.Now().UTC() }}
}

func clone(m *Movie) *Movie {
	c := *m
	c.Comments = slices.Clone(m.Comments)
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return &c
}

func (s *MemoryStore) List(_ context.Context) ([]Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]Movie, 0, len(s.movies))
	for _, m := range s.movies {
		list = append(list, *clone(m))
	}
	slices.SortStableFunc(list, func(a, b Movie) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return list, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(m), nil
}

func (s *MemoryStore) Create(_ context.Context, m *Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}
	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	s.movies[m.ID] = clone(m)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.movies, id)
	return m, nil
}

func (s *MemoryStore) PrependComment(_ context.Context, movieID string, c Comment) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return nil, ErrNotFound
	}
	m.Comments = append([]Comment{c}, m.Comments...)
	m.UpdatedAt = s.now()
	return clone(m), nil
}

func (s *MemoryStore) UpdateComment(_ context.Context, movieID, commentID string, patch CommentPatch) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return nil, ErrNotFound
	}
	c, ok := m.FindComment(commentID)
	if !ok {
		return nil, ErrCommentNotFound
	}
	c.Text = patch.Text
	c.Rating = patch.Rating
	updated := patch.UpdatedAt
	c.UpdatedAt = &updated
	m.UpdatedAt = s.now()
	return clone(m), nil
}

func (s *MemoryStore) RemoveComment(_ context.Context, movieID, commentID string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movies[movieID]
	if !ok {
		return nil, ErrNotFound
	}
	idx := slices.IndexFunc(m.Comments, func(c Comment) bool { return c.ID == commentID })
	if idx < 0 {
		return nil, ErrCommentNotFound
	}
	m.Comments = slices.Delete(m.Comments, idx, idx+1)
	m.UpdatedAt = s.now()
	return clone(m), nil
}
