package main

import (
	"context"
	"errors"
	"testing"

	"moviereview/internal/domain/admins"
)

func TestCreateAdmin(t *testing.T) {
	store := admins.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	admin, created, err := createAdmin(ctx, store, " admin2 ", "admin2@gmail.com", "secret123")
	if err != nil {
		t.Fatalf("createAdmin: %v", err)
	}
	if !created || admin.LoginID != "admin2" || admin.ID == "" {
		t.Fatalf("unexpected result: created=%v admin=%+v", created, admin)
	}
	if !admin.Password.Compare("secret123") {
		t.Fatal("stored password does not verify")
	}

	t.Run("existing login is reported, not recreated", func(t *testing.T) {
		again, created, err := createAdmin(ctx, store, "admin2", "other@gmail.com", "another1")
		if err != nil {
			t.Fatalf("createAdmin: %v", err)
		}
		if created {
			t.Fatal("expected created=false")
		}
		if again.ID != admin.ID {
			t.Fatalf("got id %s, want %s", again.ID, admin.ID)
		}
	})

	t.Run("rejects incomplete input", func(t *testing.T) {
		for _, tc := range []struct{ login, email, password string }{
			{"", "a@b.c", "secret123"},
			{"x", "", "secret123"},
			{"x", "a@b.c", "123"},
		} {
			if _, _, err := createAdmin(ctx, store, tc.login, tc.email, tc.password); !errors.Is(err, errInvalidInput) {
				t.Errorf("%+v: got %v, want errInvalidInput", tc, err)
			}
		}
	})
}
