package notesapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 300,
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func TestLogin_StoresTokenAndSendsHeader(t *testing.T) {
	t.Parallel()

	var profileToken string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if body["email"] != "qa@example.com" {
			t.Errorf("unexpected email %q", body["email"])
		}
		writeEnvelope(w, http.StatusOK, "Login successful", map[string]string{
			"id":    "u1",
			"name":  "QA User",
			"email": "qa@example.com",
			"token": "tok-123",
		})
	})
	mux.HandleFunc("GET /users/profile", func(w http.ResponseWriter, r *http.Request) {
		profileToken = r.Header.Get(TokenHeader)
		writeEnvelope(w, http.StatusOK, "Profile successful", map[string]string{
			"id": "u1", "name": "QA User", "email": "qa@example.com",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL)
	session, err := client.Login(context.Background(), "qa@example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token != "tok-123" {
		t.Errorf("expected token tok-123, got %q", session.Token)
	}
	if client.Token() != "tok-123" {
		t.Errorf("expected client to store token, got %q", client.Token())
	}

	if _, err := client.Profile(context.Background()); err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profileToken != "tok-123" {
		t.Errorf("expected %s header on profile request, got %q", TokenHeader, profileToken)
	}
}

func TestLogin_InvalidCredentialsReturnsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "Incorrect email address or password", nil)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), "qa@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for invalid credentials")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Message != "Incorrect email address or password" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if client.Token() != "" {
		t.Errorf("expected no token after failed login, got %q", client.Token())
	}
}

func TestNoteRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /notes", func(w http.ResponseWriter, r *http.Request) {
		var params CreateNoteParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode create body: %v", err)
		}
		writeEnvelope(w, http.StatusOK, "Note successfully created", Note{
			ID:          "n1",
			Title:       params.Title,
			Description: params.Description,
			Category:    params.Category,
			CreatedAt:   now,
			UpdatedAt:   now,
			UserID:      "u1",
		})
	})
	mux.HandleFunc("GET /notes", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "Notes successfully retrieved", []Note{{ID: "n1", Title: "Groceries"}})
	})
	mux.HandleFunc("DELETE /notes/n1", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "Note successfully deleted", nil)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL, WithToken("tok"))
	ctx := context.Background()

	note, err := client.CreateNote(ctx, CreateNoteParams{
		Title:       "Groceries",
		Description: "Milk and eggs",
		Category:    CategoryHome,
	})
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if note.ID != "n1" || note.Title != "Groceries" || note.Category != CategoryHome {
		t.Errorf("unexpected note: %+v", note)
	}

	notes, err := client.ListNotes(ctx)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}

	if err := client.DeleteNote(ctx, "n1"); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
}

func TestDo_NonJSONErrorBodyStillSurfaced(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.ListNotes(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", apiErr.Status)
	}
	if apiErr.Body != "upstream exploded" {
		t.Errorf("expected raw body preserved, got %q", apiErr.Body)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := New(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.ListNotes(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestWithRateLimit_OrdersRequests(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeEnvelope(w, http.StatusOK, "ok", []Note{})
	}))
	defer server.Close()

	// 2 rps with burst 1: three requests need at least ~1s.
	client := New(server.URL, WithRateLimit(2, 1))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.ListNotes(ctx); err != nil {
			t.Fatalf("ListNotes %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Errorf("expected rate limiter to pace requests, finished in %v", elapsed)
	}
	if hits != 3 {
		t.Errorf("expected 3 requests, got %d", hits)
	}
}
