package media

import (
	"errors"
	"testing"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr error
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1740815725/posters/poster_1.png", "posters/poster_1", nil},
		{"https://res.cloudinary.com/demo/image/upload/posters/poster_2.jpg", "posters/poster_2", nil},
		{"https://res.cloudinary.com/other/image/upload/v1/posters/poster_3.png", "", ErrNotHosted},
		{"http://example.com/dune.jpg", "", ErrNotHosted},
	}

	for _, tt := range tests {
		got, err := PublicIDFromURL(tt.url, "demo")
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.url, tt.wantErr, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v; want %q", tt.url, got, err, tt.want)
		}
	}

	if _, err := PublicIDFromURL("https://res.cloudinary.com/demo/image/upload/", "demo"); err == nil {
		t.Error("expected error for URL without public id")
	}
}
