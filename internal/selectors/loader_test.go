// File: internal/selectors/loader_test.go
package selectors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/navigator/internal/viewport"
)

const sampleCatalogue = `
pages:
  - name: Tickets
    url_patterns: ["/tickets"]
    title_patterns: ["Tickets"]
    nav:
      - selector: "[data-testid='nav-tickets']"
        priority: 2
        reliability: high
      - selector: ".drawer a[href='/tickets']"
        priority: 1
        reliability: medium
        scope: mobile
    required_elements:
      - name: main content
        strategies:
          - selector: main
            priority: 1
    search_interface: "input[type=search]"
    search_interface_required: false
    mobile_menu_toggle:
      - selector: ".hamburger"
        priority: 1
        scope: mobile
    mobile_menu_open_indicator: ".drawer.open"
    touch_targets: ["nav a"]
`

func TestLoad(t *testing.T) {
	r, err := Load(strings.NewReader(sampleCatalogue))
	require.NoError(t, err)

	p, err := r.Page("tickets")
	require.NoError(t, err)
	assert.Equal(t, []string{"/tickets"}, p.URLPatterns)
	assert.Equal(t, ".drawer.open", p.MobileMenuOpenIndicator)
	assert.Equal(t, "input[type=search]", p.SearchInterfaceSelector)
	require.Len(t, p.RequiredElements, 1)
	assert.Equal(t, Medium, p.RequiredElements[0].Strategies[0].Reliability)

	mobile, err := r.StrategiesFor("tickets", viewport.Mobile)
	require.NoError(t, err)
	assert.Equal(t, []string{".drawer a[href='/tickets']", "[data-testid='nav-tickets']"}, selectorsOf(mobile))

	desktop, err := r.StrategiesFor("tickets", viewport.Desktop)
	require.NoError(t, err)
	assert.Equal(t, []string{"[data-testid='nav-tickets']"}, selectorsOf(desktop))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorContains(t, err, "page catalogue is empty")

	_, err = Load(strings.NewReader("pages: []"))
	assert.ErrorContains(t, err, "defines no pages")

	_, err = Load(strings.NewReader("pages:\n  - name: x\n    url_patterns: [/x]\n    colour: blue\n"))
	assert.ErrorContains(t, err, "could not decode page catalogue")

	_, err = Load(strings.NewReader("pages:\n  - name: x\n"))
	assert.ErrorContains(t, err, "at least one url pattern")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalogue), 0o600))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, r.Has("TICKETS"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "could not read page catalogue")
}

func TestMarshalRoundTripsDefaultCatalogue(t *testing.T) {
	data, err := Marshal(DefaultCatalogue())
	require.NoError(t, err)

	r, err := Load(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, DefaultRegistry().Names(), r.Names())
}
