// Package pages provides page-object wrappers for the notes application.
// Each page object owns the locators for one screen and exposes the user
// actions the browser tests drive. Construction never touches the browser;
// navigation and assertions happen in the action methods so tests control
// timing.
package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Navbar wraps the navigation bar present on every authenticated screen.
type Navbar struct {
	page playwright.Page

	Home    playwright.Locator
	Profile playwright.Locator
	Logout  playwright.Locator
}

func NewNavbar(page playwright.Page) *Navbar {
	return &Navbar{
		page:    page,
		Home:    page.GetByTestId("home"),
		Profile: page.GetByTestId("profile"),
		Logout:  page.GetByTestId("logout"),
	}
}

// GoHome clicks through to the notes dashboard.
func (n *Navbar) GoHome() error {
	if err := n.Home.Click(); err != nil {
		return fmt.Errorf("navbar: click home: %w", err)
	}
	return nil
}

// GoToProfile opens the profile screen.
func (n *Navbar) GoToProfile() error {
	if err := n.Profile.Click(); err != nil {
		return fmt.Errorf("navbar: click profile: %w", err)
	}
	return nil
}

// LogOut ends the session via the navbar.
func (n *Navbar) LogOut() error {
	if err := n.Logout.Click(); err != nil {
		return fmt.Errorf("navbar: click logout: %w", err)
	}
	return nil
}

// LoggedIn reports whether the authenticated navbar entries are visible.
func (n *Navbar) LoggedIn() (bool, error) {
	visible, err := n.Logout.IsVisible()
	if err != nil {
		return false, fmt.Errorf("navbar: check logout visibility: %w", err)
	}
	return visible, nil
}
