package pages

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ProfilePage wraps the account profile screen.
type ProfilePage struct {
	page    playwright.Page
	baseURL string

	UserID    playwright.Locator
	UserEmail playwright.Locator
	UserName  playwright.Locator
}

func NewProfilePage(page playwright.Page, baseURL string) *ProfilePage {
	return &ProfilePage{
		page:      page,
		baseURL:   baseURL,
		UserID:    page.GetByTestId("user-id"),
		UserEmail: page.GetByTestId("user-email"),
		UserName:  page.GetByTestId("user-name"),
	}
}

func (p *ProfilePage) Page() playwright.Page { return p.page }

func (p *ProfilePage) Goto() error {
	if _, err := p.page.Goto(p.baseURL+"/profile", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("profile page: goto: %w", err)
	}
	if err := p.UserEmail.WaitFor(); err != nil {
		return fmt.Errorf("profile page: wait for details: %w", err)
	}
	return nil
}

// Email returns the displayed account email, trimmed.
func (p *ProfilePage) Email() (string, error) {
	text, err := p.UserEmail.TextContent()
	if err != nil {
		return "", fmt.Errorf("profile page: read email: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Name returns the displayed account name, trimmed.
func (p *ProfilePage) Name() (string, error) {
	text, err := p.UserName.TextContent()
	if err != nil {
		return "", fmt.Errorf("profile page: read name: %w", err)
	}
	return strings.TrimSpace(text), nil
}
