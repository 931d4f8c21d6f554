package movies

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCommentOps(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	m := &Movie{Title: "Dune", Genre: "Sci-Fi"}
	if err := s.Create(ctx, m); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"c1", "c2", "c1"} {
		if _, err := s.PrependComment(ctx, m.ID, Comment{ID: id, Text: "t-" + id, Rating: 3}); err != nil {
			t.Fatal(err)
		}
	}

	// duplicate ids: the first in storage order (the newest "c1") is the one touched
	got, err := s.UpdateComment(ctx, m.ID, "c1", CommentPatch{Text: "edited", Rating: 5, UpdatedAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if got.Comments[0].Text != "edited" || got.Comments[2].Text != "t-c1" {
		t.Fatalf("update touched the wrong element: %+v", got.Comments)
	}
	if got.Comments[0].UpdatedAt == nil {
		t.Fatal("updated_at not set")
	}

	got, err = s.RemoveComment(ctx, m.ID, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Comments) != 2 || got.Comments[0].ID != "c2" || got.Comments[1].ID != "c1" {
		t.Fatalf("remove touched the wrong element: %+v", got.Comments)
	}

	if _, err := s.RemoveComment(ctx, m.ID, "nope"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if _, err := s.UpdateComment(ctx, "nope", "c2", CommentPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := &Movie{Title: "Arrival"}
	_ = s.Create(ctx, m)
	_, _ = s.PrependComment(ctx, m.ID, Comment{ID: "c1", Text: "ok", Rating: 4})

	got, _ := s.GetByID(ctx, m.ID)
	got.Comments[0].Text = "mutated"

	again, _ := s.GetByID(ctx, m.ID)
	if again.Comments[0].Text != "ok" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	for _, title := range []string{"first", "second", "third"} {
		if err := s.Create(ctx, &Movie{Title: title}); err != nil {
			t.Fatal(err)
		}
	}

	list, _ := s.List(ctx)
	if len(list) != 3 || list[0].Title != "third" || list[2].Title != "first" {
		t.Fatalf("unexpected order: %v", titles(list))
	}

	if _, err := s.Delete(ctx, list[1].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetByID(ctx, list[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func titles(ms []Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}
