package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"moviereview/internal/auth"
	"moviereview/internal/domain/movies"
	"moviereview/internal/domain/users"
)

type fakeDirectory map[string]string

func (d fakeDirectory) DisplayName(_ context.Context, p auth.Principal) (string, error) {
	name, ok := d[p.ID]
	if !ok {
		return "", fmt.Errorf("resolve %s: %w", p.ID, users.ErrNotFound)
	}
	return name, nil
}

var (
	alice = auth.Principal{Kind: auth.KindUser, ID: "u-alice", Username: "alice"}
	bob   = auth.Principal{Kind: auth.KindUser, ID: "u-bob", Username: "bob"}
	root  = auth.Principal{Kind: auth.KindAdmin, ID: "a-root"}
)

func setup(t *testing.T) (*Engine, *movies.MemoryStore, string) {
	t.Helper()
	store := movies.NewMemoryStore()
	m := &movies.Movie{Title: "Dune", Genre: "Sci-Fi"}
	if err := store.Create(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(store, fakeDirectory{alice.ID: "alice", bob.ID: "bob", root.ID: "admin2"})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var (
		mu   sync.Mutex
		tick int
	)
	e.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return e, store, m.ID
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		rating  int
		want    string
		wantErr bool
	}{
		{"trims", "  great  ", 3, "great", false},
		{"lower bound", "ok", 1, "ok", false},
		{"upper bound", "ok", 5, "ok", false},
		{"empty", "", 3, "", true},
		{"whitespace only", " \t\n ", 3, "", true},
		{"rating zero", "ok", 0, "", true},
		{"rating six", "ok", 6, "", true},
		{"rating negative", "ok", -1, "", true},
		{"too long", strings.Repeat("x", MaxTextLength+1), 3, "", true},
		{"max length", strings.Repeat("é", MaxTextLength), 3, strings.Repeat("é", MaxTextLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.text, tt.rating)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Validate(%q, %d) = %q, %v", tt.text, tt.rating, got, err)
			}
		})
	}
}

func TestAddCommentAppearsAtHead(t *testing.T) {
	e, _, movieID := setup(t)
	ctx := context.Background()

	if _, err := e.AddComment(ctx, movieID, alice, "first", 4); err != nil {
		t.Fatal(err)
	}
	m, err := e.AddComment(ctx, movieID, bob, "  second  ", 2)
	if err != nil {
		t.Fatal(err)
	}
	if m.Comments[0].Text != "second" || m.Comments[0].AuthorUsername != "bob" {
		t.Fatalf("new comment not at head: %+v", m.Comments)
	}

	list, err := e.ListComments(ctx, movieID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Text != "second" || list[1].Text != "first" {
		t.Fatalf("unexpected list order: %+v", list)
	}
	if list[0].ID == "" || list[0].ID == list[1].ID {
		t.Fatal("comment ids must be unique and non-empty")
	}
}

func TestAddCommentRejectsWithoutStateChange(t *testing.T) {
	e, store, movieID := setup(t)
	ctx := context.Background()

	for _, tc := range []struct {
		text   string
		rating int
	}{{"", 3}, {"   ", 3}, {"ok", 0}, {"ok", 6}} {
		if _, err := e.AddComment(ctx, movieID, alice, tc.text, tc.rating); !errors.Is(err, ErrValidation) {
			t.Fatalf("AddComment(%q, %d): expected ErrValidation, got %v", tc.text, tc.rating, err)
		}
	}

	m, _ := store.GetByID(ctx, movieID)
	if len(m.Comments) != 0 {
		t.Fatalf("rejected input changed state: %+v", m.Comments)
	}
}

func TestAddCommentErrors(t *testing.T) {
	e, _, movieID := setup(t)
	ctx := context.Background()

	if _, err := e.AddComment(ctx, "missing", alice, "hi", 3); !errors.Is(err, movies.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.AddComment(ctx, movieID, auth.Principal{}, "hi", 3); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	ghost := auth.Principal{Kind: auth.KindUser, ID: "u-ghost"}
	if _, err := e.AddComment(ctx, movieID, ghost, "hi", 3); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for unknown author, got %v", err)
	}
}

func TestUsernameIsSnapshot(t *testing.T) {
	store := movies.NewMemoryStore()
	m := &movies.Movie{Title: "Heat"}
	_ = store.Create(context.Background(), m)
	dir := fakeDirectory{alice.ID: "alice"}
	e := NewEngine(store, dir)

	if _, err := e.AddComment(context.Background(), m.ID, alice, "hi", 5); err != nil {
		t.Fatal(err)
	}
	dir[alice.ID] = "alice-renamed"

	list, _ := e.ListComments(context.Background(), m.ID)
	if list[0].AuthorUsername != "alice" {
		t.Fatalf("snapshot changed: %q", list[0].AuthorUsername)
	}
}

func TestEditComment(t *testing.T) {
	e, _, movieID := setup(t)
	ctx := context.Background()

	m, err := e.AddComment(ctx, movieID, alice, "original", 3)
	if err != nil {
		t.Fatal(err)
	}
	commentID := m.Comments[0].ID

	t.Run("non author is forbidden and nothing changes", func(t *testing.T) {
		for _, p := range []auth.Principal{bob, root} {
			if _, err := e.EditComment(ctx, movieID, commentID, p, "hijacked", 1); !errors.Is(err, ErrForbidden) {
				t.Fatalf("%v: expected ErrForbidden, got %v", p, err)
			}
		}
		list, _ := e.ListComments(ctx, movieID)
		if list[0].Text != "original" || list[0].Rating != 3 || list[0].UpdatedAt != nil {
			t.Fatalf("comment changed: %+v", list[0])
		}
	})

	t.Run("rating out of range", func(t *testing.T) {
		if _, err := e.EditComment(ctx, movieID, commentID, alice, "x", 6); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("boundaries accepted", func(t *testing.T) {
		for _, rating := range []int{1, 5} {
			m, err := e.EditComment(ctx, movieID, commentID, alice, " edited ", rating)
			if err != nil {
				t.Fatalf("rating %d: %v", rating, err)
			}
			c := m.Comments[0]
			if c.Text != "edited" || c.Rating != rating || c.UpdatedAt == nil {
				t.Fatalf("unexpected comment after edit: %+v", c)
			}
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := e.EditComment(ctx, movieID, "nope", alice, "x", 3); !errors.Is(err, movies.ErrCommentNotFound) {
			t.Fatalf("expected ErrCommentNotFound, got %v", err)
		}
		if _, err := e.EditComment(ctx, "nope", commentID, alice, "x", 3); !errors.Is(err, movies.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestDeleteComment(t *testing.T) {
	e, _, movieID := setup(t)
	ctx := context.Background()

	add := func(p auth.Principal, text string) string {
		m, err := e.AddComment(ctx, movieID, p, text, 3)
		if err != nil {
			t.Fatal(err)
		}
		return m.Comments[0].ID
	}
	mine := add(alice, "alice one")
	other := add(alice, "alice two")
	bobs := add(bob, "bob one")

	if _, err := e.DeleteComment(ctx, movieID, mine, bob); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := e.DeleteComment(ctx, movieID, mine, alice); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := e.DeleteComment(ctx, movieID, other, root); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := e.DeleteComment(ctx, movieID, mine, alice); !errors.Is(err, movies.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
	if _, err := e.DeleteComment(ctx, "nope", bobs, bob); !errors.Is(err, movies.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	list, _ := e.ListComments(ctx, movieID)
	if len(list) != 1 || list[0].ID != bobs {
		t.Fatalf("unexpected remaining comments: %+v", list)
	}
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	e, _, movieID := setup(t)
	ctx := context.Background()
	const n = 10

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.AddComment(ctx, movieID, alice, fmt.Sprintf("comment %d", i), 1+i%5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	list, err := e.ListComments(ctx, movieID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != n {
		t.Fatalf("expected %d comments, got %d", n, len(list))
	}
}
