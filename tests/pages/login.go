package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// LoginPage wraps the login screen.
type LoginPage struct {
	page    playwright.Page
	baseURL string

	Email    playwright.Locator
	Password playwright.Locator
	Submit   playwright.Locator
	Alert    playwright.Locator
}

func NewLoginPage(page playwright.Page, baseURL string) *LoginPage {
	return &LoginPage{
		page:     page,
		baseURL:  baseURL,
		Email:    page.GetByTestId("login-email"),
		Password: page.GetByTestId("login-password"),
		Submit:   page.GetByTestId("login-submit"),
		Alert:    page.GetByTestId("alert-message"),
	}
}

// Page exposes the underlying Playwright page so flows can continue onto the
// next screen's page object.
func (p *LoginPage) Page() playwright.Page { return p.page }

// Goto navigates to the login screen and waits for the form.
func (p *LoginPage) Goto() error {
	if _, err := p.page.Goto(p.baseURL+"/login", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("login page: goto: %w", err)
	}
	if err := p.Email.WaitFor(); err != nil {
		return fmt.Errorf("login page: wait for form: %w", err)
	}
	return nil
}

// Login fills the form and submits. It does not assert the outcome; callers
// check LoggedIn or ErrorMessage depending on what they expect.
func (p *LoginPage) Login(email, password string) error {
	if err := p.Email.Fill(email); err != nil {
		return fmt.Errorf("login page: fill email: %w", err)
	}
	if err := p.Password.Fill(password); err != nil {
		return fmt.Errorf("login page: fill password: %w", err)
	}
	if err := p.Submit.Click(); err != nil {
		return fmt.Errorf("login page: submit: %w", err)
	}
	return nil
}

// ErrorMessage waits for the alert banner and returns its text.
func (p *LoginPage) ErrorMessage() (string, error) {
	if err := p.Alert.WaitFor(); err != nil {
		return "", fmt.Errorf("login page: wait for alert: %w", err)
	}
	text, err := p.Alert.TextContent()
	if err != nil {
		return "", fmt.Errorf("login page: read alert: %w", err)
	}
	return text, nil
}
