package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// NotesPage wraps the notes dashboard: the note list plus the add/edit modal.
type NotesPage struct {
	page    playwright.Page
	baseURL string

	Navbar *Navbar

	AddNote     playwright.Locator
	SearchInput playwright.Locator
	SearchBtn   playwright.Locator
	NoNotesMsg  playwright.Locator
	Cards       playwright.Locator

	Editor *NoteEditor
}

// NoteEditor wraps the create/edit note modal form.
type NoteEditor struct {
	Title       playwright.Locator
	Description playwright.Locator
	Category    playwright.Locator
	Completed   playwright.Locator
	Submit      playwright.Locator
}

// NoteCard is a locator-scoped view over one note in the list.
type NoteCard struct {
	Root        playwright.Locator
	Title       playwright.Locator
	Description playwright.Locator
	Toggle      playwright.Locator
	View        playwright.Locator
	Edit        playwright.Locator
	Delete      playwright.Locator
}

func NewNotesPage(page playwright.Page, baseURL string) *NotesPage {
	return &NotesPage{
		page:        page,
		baseURL:     baseURL,
		Navbar:      NewNavbar(page),
		AddNote:     page.GetByTestId("add-new-note"),
		SearchInput: page.GetByTestId("search-input"),
		SearchBtn:   page.GetByTestId("search-btn"),
		NoNotesMsg:  page.GetByTestId("no-notes-message"),
		Cards:       page.GetByTestId("note-card"),
		Editor: &NoteEditor{
			Title:       page.GetByTestId("note-title"),
			Description: page.GetByTestId("note-description"),
			Category:    page.GetByTestId("note-category"),
			Completed:   page.GetByTestId("note-completed"),
			Submit:      page.GetByTestId("note-submit"),
		},
	}
}

func (p *NotesPage) Page() playwright.Page { return p.page }

// Goto opens the dashboard and waits for either the add-note button (the
// list may legitimately be empty).
func (p *NotesPage) Goto() error {
	if _, err := p.page.Goto(p.baseURL+"/", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("notes page: goto: %w", err)
	}
	if err := p.AddNote.WaitFor(); err != nil {
		return fmt.Errorf("notes page: wait for dashboard: %w", err)
	}
	return nil
}

// CreateNote opens the modal, fills it, and submits. Category must be one of
// the application's three options (Home, Work, Personal).
func (p *NotesPage) CreateNote(title, description, category string) error {
	if err := p.AddNote.Click(); err != nil {
		return fmt.Errorf("notes page: open editor: %w", err)
	}
	if err := p.Editor.Title.WaitFor(); err != nil {
		return fmt.Errorf("notes page: wait for editor: %w", err)
	}
	if err := p.Editor.Title.Fill(title); err != nil {
		return fmt.Errorf("notes page: fill title: %w", err)
	}
	if err := p.Editor.Description.Fill(description); err != nil {
		return fmt.Errorf("notes page: fill description: %w", err)
	}
	if _, err := p.Editor.Category.SelectOption(playwright.SelectOptionValues{
		Values: &[]string{category},
	}); err != nil {
		return fmt.Errorf("notes page: select category: %w", err)
	}
	if err := p.Editor.Submit.Click(); err != nil {
		return fmt.Errorf("notes page: submit note: %w", err)
	}
	return nil
}

// Card returns the locators for the note whose title matches exactly.
func (p *NotesPage) Card(title string) *NoteCard {
	root := p.Cards.Filter(playwright.LocatorFilterOptions{
		Has: p.page.GetByText(title, playwright.PageGetByTextOptions{Exact: playwright.Bool(true)}),
	}).First()
	return &NoteCard{
		Root:        root,
		Title:       root.GetByTestId("note-card-title"),
		Description: root.GetByTestId("note-card-description"),
		Toggle:      root.GetByTestId("toggle-note-switch"),
		View:        root.GetByTestId("note-view"),
		Edit:        root.GetByTestId("note-edit"),
		Delete:      root.GetByTestId("note-delete"),
	}
}

// Count returns the number of note cards currently shown.
func (p *NotesPage) Count() (int, error) {
	n, err := p.Cards.Count()
	if err != nil {
		return 0, fmt.Errorf("notes page: count cards: %w", err)
	}
	return n, nil
}

// DeleteNote removes the note with the given title, confirming the dialog.
func (p *NotesPage) DeleteNote(title string) error {
	card := p.Card(title)
	if err := card.Delete.Click(); err != nil {
		return fmt.Errorf("notes page: click delete: %w", err)
	}
	confirm := p.page.GetByTestId("note-delete-confirm")
	if err := confirm.Click(); err != nil {
		return fmt.Errorf("notes page: confirm delete: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completed switch on the note with the given title.
func (p *NotesPage) ToggleCompleted(title string) error {
	if err := p.Card(title).Toggle.Click(); err != nil {
		return fmt.Errorf("notes page: toggle completed: %w", err)
	}
	return nil
}

// Search submits a search query and waits for the list to settle.
func (p *NotesPage) Search(query string) error {
	if err := p.SearchInput.Fill(query); err != nil {
		return fmt.Errorf("notes page: fill search: %w", err)
	}
	if err := p.SearchBtn.Click(); err != nil {
		return fmt.Errorf("notes page: click search: %w", err)
	}
	return nil
}
