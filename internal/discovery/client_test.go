package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "dentists in Columbia, SC" {
			t.Errorf("query param = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key param = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"name": "Smile Dental",
					"formatted_address": "123 Main St, Columbia, SC",
					"formatted_phone_number": "(803) 555-0101",
					"website": "https://smiledental.example",
					"rating": 4.7,
					"user_ratings_total": 120,
					"types": ["dentist", "health"]
				},
				{
					"name": "Shadeless Blinds",
					"formatted_address": "9 Oak Ave, Columbia, SC"
				}
			]
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), srv.URL, "test-key")
	if err != nil {
		t.Fatal(err)
	}

	candidates, err := client.Search(context.Background(), "dentists in Columbia, SC")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Name != "Smile Dental" || first.Website != "https://smiledental.example" {
		t.Errorf("first candidate = %+v", first)
	}
	if first.ReviewsCount != 120 || first.Rating != 4.7 {
		t.Errorf("ratings mapped wrong: %+v", first)
	}
	if first.ID != "" {
		t.Errorf("ID = %q, want empty (assigned at pipeline ingest)", first.ID)
	}
	if candidates[1].Website != "" {
		t.Errorf("second candidate website = %q, want empty", candidates[1].Website)
	}
}

func TestClient_Search_ZeroResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client, err := NewClient(srv.Client(), srv.URL, "test-key")
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := client.Search(context.Background(), "unicorn groomers in Nowhere, ZZ")
	if err != nil {
		t.Fatalf("Search() error on zero results: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

func TestClient_Search_Errors(t *testing.T) {
	t.Parallel()

	t.Run("api status error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "REQUEST_DENIED", "results": []}`)) //nolint:errcheck
		}))
		defer srv.Close()

		client, err := NewClient(srv.Client(), srv.URL, "bad-key")
		if err != nil {
			t.Fatal(err)
		}
		_, err = client.Search(context.Background(), "dentists")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.APIStatus != "REQUEST_DENIED" {
			t.Errorf("APIStatus = %q", statusErr.APIStatus)
		}
	})

	t.Run("http error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := NewClient(srv.Client(), srv.URL, "test-key")
		if err != nil {
			t.Fatal(err)
		}
		_, err = client.Search(context.Background(), "dentists")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want *StatusError", err)
		}
		if statusErr.HTTPStatus != http.StatusBadGateway {
			t.Errorf("HTTPStatus = %d", statusErr.HTTPStatus)
		}
	})
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(http.DefaultClient, "", "key"); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("error = %v, want ErrNoBaseURL", err)
	}
	if _, err := NewClient(http.DefaultClient, "https://api.example", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("error = %v, want ErrNoAPIKey", err)
	}
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.json")
	content := `[
		{"name": "Smile Dental", "website": "https://smiledental.example", "reviews_count": 120},
		{"name": "Shadeless Blinds"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	candidates, err := src.Search(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(candidates) != 2 || candidates[0].Name != "Smile Dental" {
		t.Errorf("candidates = %+v", candidates)
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		if _, err := NewFileSource(filepath.Join(dir, "absent.json")).Search(context.Background(), ""); err == nil {
			t.Error("Search() = nil error for a missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		t.Parallel()
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte("not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFileSource(bad).Search(context.Background(), ""); err == nil {
			t.Error("Search() = nil error for malformed JSON")
		}
	})
}
