// File: internal/selectors/catalogue.go
package selectors

// mainContent is the required landmark every application page renders.
var mainContent = ElementSpec{
	Name: "main content",
	Strategies: []Strategy{
		{Selector: "[data-testid='main-content']", Priority: 1, Reliability: High},
		{Selector: "main", Priority: 2, Reliability: Medium},
		{Selector: "[role='main']", Priority: 3, Reliability: Medium},
		{Selector: "#content, .content", Priority: 4, Reliability: Low},
	},
}

// drawerToggle opens the hamburger navigation drawer on mobile layouts.
var drawerToggle = []Strategy{
	{Selector: "[data-testid='mobile-menu-toggle']", Priority: 1, Reliability: High, Scope: ScopeMobile},
	{Selector: "button[aria-label*='menu' i]", Priority: 2, Reliability: Medium, Scope: ScopeMobile},
	{Selector: ".navbar-burger, .hamburger", Priority: 3, Reliability: Low, Scope: ScopeMobile},
}

const drawerOpen = "[data-testid='mobile-menu'][data-state='open'], nav[aria-expanded='true'], .navbar-menu.is-active"

var commonTouchTargets = []string{"nav a", "button", "[role='button']"}

// navFor builds the usual nav strategy ladder for a page slug: test ids first,
// then per-layout structural shapes, then href matching.
func navFor(slug, label string) []Strategy {
	return []Strategy{
		{Selector: "[data-testid='nav-" + slug + "']", Priority: 1, Reliability: High},
		{Selector: "[data-testid='mobile-nav-" + slug + "']", Priority: 2, Reliability: High, Scope: ScopeMobile},
		{Selector: "nav a[aria-label='" + label + "']", Priority: 3, Reliability: High},
		{Selector: "aside.sidebar a[href$='/" + slug + "']", Priority: 4, Reliability: Medium, Scope: ScopeDesktop},
		{Selector: "[role='tablist'] [role='tab'][href$='/" + slug + "']", Priority: 4, Reliability: Medium, Scope: ScopeTablet},
		{Selector: "[data-testid='mobile-menu'] a[href$='/" + slug + "']", Priority: 5, Reliability: Medium, Scope: ScopeMobile},
		{Selector: "nav a[href$='/" + slug + "']", Priority: 6, Reliability: Medium},
		{Selector: "a[href$='/" + slug + "']", Priority: 7, Reliability: Low},
	}
}

// DefaultCatalogue returns the built-in page definitions for the support desk
// application the suite targets. A YAML catalogue replaces it entirely.
func DefaultCatalogue() []PageConfig {
	return []PageConfig{
		{
			Name:                    "dashboard",
			URLPatterns:             []string{"/dashboard", "/home"},
			TitlePatterns:           []string{"Dashboard"},
			NavStrategies:           navFor("dashboard", "Dashboard"),
			NavFallbackText:         []string{"home"},
			RequiredElements:        []ElementSpec{mainContent},
			MobileMenuToggle:        drawerToggle,
			MobileMenuOpenIndicator: drawerOpen,
			TouchTargets:            commonTouchTargets,
		},
		{
			Name:                    "tickets",
			URLPatterns:             []string{"/tickets"},
			TitlePatterns:           []string{"Tickets"},
			NavStrategies:           navFor("tickets", "Tickets"),
			NavFallbackText:         []string{"support tickets"},
			RequiredElements:        []ElementSpec{mainContent},
			SearchInterfaceSelector: "[data-testid='ticket-search'], input[type='search']",
			SearchInterfaceRequired: false,
			MobileMenuToggle:        drawerToggle,
			MobileMenuOpenIndicator: drawerOpen,
			TouchTargets:            commonTouchTargets,
		},
		{
			Name:          "customers",
			URLPatterns:   []string{"/customers"},
			TitlePatterns: []string{"Customers"},
			NavStrategies: navFor("customers", "Customers"),
			RequiredElements: []ElementSpec{
				mainContent,
				{
					Name: "customer table",
					Strategies: []Strategy{
						{Selector: "[data-testid='customer-table']", Priority: 1, Reliability: High},
						{Selector: "table", Priority: 2, Reliability: Low},
					},
				},
			},
			SearchInterfaceSelector: "[data-testid='customer-search'], input[type='search']",
			SearchInterfaceRequired: true,
			MobileMenuToggle:        drawerToggle,
			MobileMenuOpenIndicator: drawerOpen,
			TouchTargets:            commonTouchTargets,
		},
		{
			Name:                    "reports",
			URLPatterns:             []string{"/reports", "/analytics"},
			TitlePatterns:           []string{"Reports", "Analytics"},
			NavStrategies:           navFor("reports", "Reports"),
			NavFallbackText:         []string{"analytics"},
			RequiredElements:        []ElementSpec{mainContent},
			MobileMenuToggle:        drawerToggle,
			MobileMenuOpenIndicator: drawerOpen,
			TouchTargets:            commonTouchTargets,
		},
		{
			Name:                    "settings",
			URLPatterns:             []string{"/settings"},
			TitlePatterns:           []string{"Settings"},
			NavStrategies:           navFor("settings", "Settings"),
			NavFallbackText:         []string{"preferences"},
			RequiredElements:        []ElementSpec{mainContent},
			MobileMenuToggle:        drawerToggle,
			MobileMenuOpenIndicator: drawerOpen,
			TouchTargets:            commonTouchTargets,
		},
	}
}

// DefaultRegistry builds a Registry from DefaultCatalogue.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCatalogue()...)
	if err != nil {
		// The built-in catalogue is covered by tests; failing here is a programming error.
		panic(err)
	}
	return r
}
