package api

import (
	"pgregory.net/rapid"

	"github.com/inkops/notes-e2e/internal/notesapi"
)

// =============================================================================
// Shared rapid generators
// =============================================================================

// EmailGenerator generates valid email addresses for testing.
func EmailGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z]{5,10}@example\.com`)
}

// PasswordGenerator generates valid passwords (6+ chars).
func PasswordGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9!@#]{8,20}`)
}

// NameGenerator generates display names.
func NameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Z][a-z]{2,10} [A-Z][a-z]{2,10}`)
}

// NoteTitleGenerator generates valid note titles (non-empty strings).
func NoteTitleGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{3,49}`)
}

// NoteDescriptionGenerator generates non-empty note descriptions.
func NoteDescriptionGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[A-Za-z0-9 .,!?]{1,200}`)
}

// CategoryGenerator samples the three categories the app accepts.
func CategoryGenerator() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		notesapi.CategoryHome,
		notesapi.CategoryWork,
		notesapi.CategoryPersonal,
	})
}

// NoteParamsGenerator generates complete, valid create-note payloads.
func NoteParamsGenerator() *rapid.Generator[notesapi.CreateNoteParams] {
	return rapid.Custom(func(t *rapid.T) notesapi.CreateNoteParams {
		return notesapi.CreateNoteParams{
			Title:       NoteTitleGenerator().Draw(t, "title"),
			Description: NoteDescriptionGenerator().Draw(t, "description"),
			Category:    CategoryGenerator().Draw(t, "category"),
		}
	})
}
