package movies

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("movie not found")
	ErrCommentNotFound   = errors.New("comment not found")
	QueryTimeoutDuration = time.Second * 5
)

// Movie is the aggregate root. Comments live inside it, newest first.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	ReleaseDate time.Time `json:"releaseDate"`
	Description string    `json:"description"`
	PosterURL   string    `json:"posterUrl"`
	Rating      float64   `json:"rating"`
	Comments    []Comment `json:"comments"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is stored as one element of the movie's JSONB comments array.
// AuthorUsername is a snapshot taken at creation and is never refreshed.
type Comment struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Rating         int        `json:"rating"`
	AuthorID       string     `json:"authorId"`
	AuthorUsername string     `json:"authorUsername"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// CommentPatch is merged into an existing comment by UpdateComment.
type CommentPatch struct {
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindComment returns the first comment with the given id in storage order.
func (m *Movie) FindComment(id string) (*Comment, bool) {
	for i := range m.Comments {
		if m.Comments[i].ID == id {
			return &m.Comments[i], true
		}
	}
	return nil, false
}
