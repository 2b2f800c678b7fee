package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// RegisterPage wraps the account registration screen.
type RegisterPage struct {
	page    playwright.Page
	baseURL string

	Email           playwright.Locator
	Name            playwright.Locator
	Password        playwright.Locator
	ConfirmPassword playwright.Locator
	Submit          playwright.Locator
	Alert           playwright.Locator
}

func NewRegisterPage(page playwright.Page, baseURL string) *RegisterPage {
	return &RegisterPage{
		page:            page,
		baseURL:         baseURL,
		Email:           page.GetByTestId("register-email"),
		Name:            page.GetByTestId("register-name"),
		Password:        page.GetByTestId("register-password"),
		ConfirmPassword: page.GetByTestId("register-confirm-password"),
		Submit:          page.GetByTestId("register-submit"),
		Alert:           page.GetByTestId("alert-message"),
	}
}

func (p *RegisterPage) Page() playwright.Page { return p.page }

func (p *RegisterPage) Goto() error {
	if _, err := p.page.Goto(p.baseURL+"/register", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("register page: goto: %w", err)
	}
	if err := p.Email.WaitFor(); err != nil {
		return fmt.Errorf("register page: wait for form: %w", err)
	}
	return nil
}

// Register fills every field and submits.
func (p *RegisterPage) Register(email, name, password string) error {
	if err := p.Email.Fill(email); err != nil {
		return fmt.Errorf("register page: fill email: %w", err)
	}
	if err := p.Name.Fill(name); err != nil {
		return fmt.Errorf("register page: fill name: %w", err)
	}
	if err := p.Password.Fill(password); err != nil {
		return fmt.Errorf("register page: fill password: %w", err)
	}
	if err := p.ConfirmPassword.Fill(password); err != nil {
		return fmt.Errorf("register page: fill confirm password: %w", err)
	}
	if err := p.Submit.Click(); err != nil {
		return fmt.Errorf("register page: submit: %w", err)
	}
	return nil
}

// Alert banner text, shown for both success and validation failure.
func (p *RegisterPage) AlertMessage() (string, error) {
	if err := p.Alert.WaitFor(); err != nil {
		return "", fmt.Errorf("register page: wait for alert: %w", err)
	}
	text, err := p.Alert.TextContent()
	if err != nil {
		return "", fmt.Errorf("register page: read alert: %w", err)
	}
	return text, nil
}
