package notesapi

import "time"

// User is the account record returned by the users endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a successful login: the user plus the auth token the API expects
// in the x-auth-token header.
type Session struct {
	User
	Token string `json:"token"`
}

// Note is a single note record owned by exactly one user.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `json:"user_id"`
}

// Note categories accepted by the app.
const (
	CategoryHome     = "Home"
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
)

// CreateNoteParams are the fields for POST /notes.
type CreateNoteParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdateNoteParams are the fields for PUT /notes/{id}. The API replaces the
// whole record, so all fields must be supplied.
type UpdateNoteParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Completed   bool   `json:"completed"`
}

// RegisterParams are the fields for POST /users/register.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
