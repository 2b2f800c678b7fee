// Package api holds the contract tests for the notes API client. They run
// against an in-memory reference implementation of the wire protocol
// (envelope responses, x-auth-token auth, per-user note ownership), so the
// suite needs no network and every status-code edge is reachable on demand.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/inkops/notes-e2e/internal/notesapi"
)

type appUser struct {
	ID       string
	Name     string
	Email    string
	Password string
}

type appNote struct {
	notesapi.Note
}

// testApp is a stateful in-memory notes service speaking the production wire
// contract. All handlers share one mutex; contention is irrelevant at test
// scale.
type testApp struct {
	mu     sync.Mutex
	users  map[string]*appUser // keyed by email
	tokens map[string]string   // token -> user ID
	notes  map[string]*appNote // keyed by note ID
}

// StartTestApp serves the reference implementation and returns its base URL.
// The server is torn down with the test.
func StartTestApp(t *testing.T) string {
	t.Helper()

	app := &testApp{
		users:  map[string]*appUser{},
		tokens: map[string]string{},
		notes:  map[string]*appNote{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/register", app.handleRegister)
	mux.HandleFunc("POST /users/login", app.handleLogin)
	mux.HandleFunc("GET /users/profile", app.handleProfile)
	mux.HandleFunc("DELETE /users/logout", app.handleLogout)
	mux.HandleFunc("POST /notes", app.handleCreateNote)
	mux.HandleFunc("GET /notes", app.handleListNotes)
	mux.HandleFunc("GET /notes/{id}", app.handleGetNote)
	mux.HandleFunc("PUT /notes/{id}", app.handleUpdateNote)
	mux.HandleFunc("DELETE /notes/{id}", app.handleDeleteNote)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

// NewClient returns an API client for a fresh test app instance.
func NewClient(t *testing.T, opts ...notesapi.Option) *notesapi.Client {
	t.Helper()
	return notesapi.New(StartTestApp(t), opts...)
}

// RegisterAndLogin provisions an account and returns an authenticated client.
func RegisterAndLogin(t *testing.T, client *notesapi.Client, email, name, password string) *notesapi.Session {
	t.Helper()

	ctx := t.Context()
	if _, err := client.Register(ctx, notesapi.RegisterParams{
		Name: name, Email: email, Password: password,
	}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	session, err := client.Login(ctx, email, password)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return session
}

// =============================================================================
// Wire helpers
// =============================================================================

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{
		"success": status >= 200 && status < 300,
		"status":  status,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// authUser resolves the x-auth-token header to a user ID. Writes the 401
// envelope itself when the token is missing or revoked.
func (a *testApp) authUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	token := r.Header.Get(notesapi.TokenHeader)
	userID, ok := a.tokens[token]
	if token == "" || !ok {
		writeEnvelope(w, http.StatusUnauthorized, "No authentication token specified in x-auth-token header", nil)
		return "", false
	}
	return userID, true
}

// =============================================================================
// User handlers
// =============================================================================

func (a *testApp) handleRegister(w http.ResponseWriter, r *http.Request) {
	var params notesapi.RegisterParams
	if !decodeBody(w, r, &params) {
		return
	}
	if params.Name == "" || params.Email == "" || len(params.Password) < 6 {
		writeEnvelope(w, http.StatusBadRequest, "Name, email and password (6+ chars) are required", nil)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.users[params.Email]; exists {
		writeEnvelope(w, http.StatusConflict, "An account already exists with the same email address", nil)
		return
	}
	user := &appUser{
		ID:       uuid.NewString(),
		Name:     params.Name,
		Email:    params.Email,
		Password: params.Password,
	}
	a.users[params.Email] = user
	writeEnvelope(w, http.StatusCreated, "User account created successfully", notesapi.User{
		ID: user.ID, Name: user.Name, Email: user.Email,
	})
}

func (a *testApp) handleLogin(w http.ResponseWriter, r *http.Request) {
	var params struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &params) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	user, ok := a.users[params.Email]
	if !ok || user.Password != params.Password {
		writeEnvelope(w, http.StatusUnauthorized, "Incorrect email address or password", nil)
		return
	}
	token := uuid.NewString()
	a.tokens[token] = user.ID
	writeEnvelope(w, http.StatusOK, "Login successful", notesapi.Session{
		User:  notesapi.User{ID: user.ID, Name: user.Name, Email: user.Email},
		Token: token,
	})
}

func (a *testApp) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, user := range a.users {
		if user.ID == userID {
			writeEnvelope(w, http.StatusOK, "Profile successful", notesapi.User{
				ID: user.ID, Name: user.Name, Email: user.Email,
			})
			return
		}
	}
	writeEnvelope(w, http.StatusUnauthorized, "Unknown user", nil)
}

func (a *testApp) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.authUser(w, r); !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.tokens, r.Header.Get(notesapi.TokenHeader))
	writeEnvelope(w, http.StatusOK, "User has been successfully logged out", nil)
}

// =============================================================================
// Note handlers
// =============================================================================

func validCategory(c string) bool {
	switch c {
	case notesapi.CategoryHome, notesapi.CategoryWork, notesapi.CategoryPersonal:
		return true
	}
	return false
}

func (a *testApp) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}
	var params notesapi.CreateNoteParams
	if !decodeBody(w, r, &params) {
		return
	}
	if params.Title == "" || params.Description == "" || !validCategory(params.Category) {
		writeEnvelope(w, http.StatusBadRequest,
			fmt.Sprintf("Title, description and a valid category (%s, %s, %s) are required",
				notesapi.CategoryHome, notesapi.CategoryWork, notesapi.CategoryPersonal), nil)
		return
	}

	now := time.Now().UTC()
	note := &appNote{Note: notesapi.Note{
		ID:          uuid.NewString(),
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}}

	a.mu.Lock()
	a.notes[note.ID] = note
	a.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "Note successfully created", note.Note)
}

func (a *testApp) handleListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	owned := []notesapi.Note{}
	for _, note := range a.notes {
		if note.UserID == userID {
			owned = append(owned, note.Note)
		}
	}
	writeEnvelope(w, http.StatusOK, "Notes successfully retrieved", owned)
}

// ownedNote fetches the note and enforces ownership. Cross-user access reads
// as absence, never as 403.
func (a *testApp) ownedNote(w http.ResponseWriter, r *http.Request, userID string) (*appNote, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	note, ok := a.notes[r.PathValue("id")]
	if !ok || note.UserID != userID {
		writeEnvelope(w, http.StatusNotFound, "No note was found with the provided ID", nil)
		return nil, false
	}
	return note, true
}

func (a *testApp) handleGetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}
	note, ok := a.ownedNote(w, r, userID)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, "Note successfully retrieved", note.Note)
}

func (a *testApp) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}
	var params notesapi.UpdateNoteParams
	if !decodeBody(w, r, &params) {
		return
	}
	if params.Title == "" || params.Description == "" || !validCategory(params.Category) {
		writeEnvelope(w, http.StatusBadRequest, "Title, description and a valid category are required", nil)
		return
	}
	note, ok := a.ownedNote(w, r, userID)
	if !ok {
		return
	}

	a.mu.Lock()
	note.Title = params.Title
	note.Description = params.Description
	note.Category = params.Category
	note.Completed = params.Completed
	note.UpdatedAt = time.Now().UTC()
	updated := note.Note
	a.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "Note successfully updated", updated)
}

func (a *testApp) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.authUser(w, r)
	if !ok {
		return
	}
	note, ok := a.ownedNote(w, r, userID)
	if !ok {
		return
	}

	a.mu.Lock()
	delete(a.notes, note.ID)
	a.mu.Unlock()
	writeEnvelope(w, http.StatusOK, "Note successfully deleted", nil)
}
