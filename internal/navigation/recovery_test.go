// File: internal/navigation/recovery_test.go
package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/mocks"
	"github.com/xkilldash9x/navigator/internal/selectors"
)

func TestErrorDetector(t *testing.T) {
	tests := []struct {
		name   string
		status int
		title  string
		body   string
		want   ErrorType
	}{
		{"healthy", 200, "Tickets", "Open tickets", ErrorNone},
		{"ticket number is not an error", 200, "Tickets", "Ticket #404 escalated to tier 2", ErrorNone},
		{"status 404", 404, "Tickets", "Open tickets", NotFound},
		{"status 410", 410, "", "", NotFound},
		{"status 503", 503, "Tickets", "Open tickets", HTTPError},
		{"blank body", 200, "Tickets", "   \n", BlankPage},
		{"not found title", 200, "404 - Not Found", "Sorry", NotFound},
		{"not found body", 200, "Helpdesk", "Page not found. Go home?", NotFound},
		{"server error title", 200, "502 Bad Gateway", "nginx", HTTPError},
		{"server error body", 200, "Helpdesk", "Error 500: please try again", HTTPError},
		{"react crash", 200, "Helpdesk", "Application error: a client-side exception has occurred", JSCrash},
		{"chunk load", 200, "Helpdesk", "ChunkLoadError: Loading chunk 42 failed.", JSCrash},
		{"generic crash", 200, "Helpdesk", "Something went wrong.", JSCrash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver(1280, 800)
			d.current = "/tickets"
			p := d.page("/tickets")
			p.status, p.title, p.body = tt.status, tt.title, tt.body

			state, err := NewErrorDetector(d, zaptest.NewLogger(t)).Detect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, state.Type)
			assert.Equal(t, tt.want != ErrorNone, state.InError)
			if state.InError {
				assert.NotEmpty(t, state.Details)
			}
		})
	}
}

// statusless hides the fake's StatusReporter implementation.
type statusless struct{ browser.Driver }

func TestErrorDetector_WithoutStatusReporter(t *testing.T) {
	d := newFakeDriver(1280, 800)
	d.current = "/tickets"
	p := d.page("/tickets")
	p.status, p.title, p.body = 500, "Tickets", "Open tickets"

	state, err := NewErrorDetector(statusless{d}, nil).Detect(context.Background())
	require.NoError(t, err)
	assert.False(t, state.InError)
	assert.Zero(t, state.Status)
}

func TestErrorDetector_UsesStatusCapabilityOfMock(t *testing.T) {
	m := new(mocks.MockStatusDriver)
	m.On("DocumentStatus", mock.Anything).Return(500, nil)

	state, err := NewErrorDetector(m, nil).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HTTPError, state.Type)
	assert.Equal(t, 500, state.Status)
	m.AssertNotCalled(t, "BodyText", mock.Anything)
}

func brokenTickets(d *fakeDriver) {
	p := d.page("/tickets")
	p.status, p.title, p.body = 200, "Helpdesk", ""
	p.elements = map[string][]browser.Element{}
}

func TestIsPageInErrorState(t *testing.T) {
	d := newFakeDriver(1280, 800)
	d.current = "/tickets"
	brokenTickets(d)
	n, _ := newTestNavigator(t, d, nil)

	state, err := n.IsPageInErrorState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.InError)
	assert.Equal(t, BlankPage, state.Type)
	assert.Zero(t, d.reloads, "detection never mutates the page")
	assert.Empty(t, d.navigations)
}

func TestAttemptErrorRecovery(t *testing.T) {
	t.Run("reload fixes the page", func(t *testing.T) {
		d := newFakeDriver(1280, 800)
		d.current = "/tickets"
		brokenTickets(d)
		d.onReload = healthyTickets
		n, _ := newTestNavigator(t, d, nil)

		ok, err := n.AttemptErrorRecovery(context.Background(), "tickets")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, d.reloads)
		assert.Empty(t, d.navigations)
	})

	t.Run("direct URL after failed reload", func(t *testing.T) {
		d := newFakeDriver(1280, 800)
		d.current = "/crashed"
		d.page("/crashed").title = "Application error"
		healthyTickets(d)
		n, _ := newTestNavigator(t, d, nil)

		ok, err := n.AttemptErrorRecovery(context.Background(), "tickets")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, d.reloads)
		assert.Equal(t, []string{testBase + "/tickets"}, d.navigations)
	})

	t.Run("gives up after both steps", func(t *testing.T) {
		d := newFakeDriver(1280, 800)
		d.current = "/tickets"
		brokenTickets(d)
		n, _ := newTestNavigator(t, d, nil)

		ok, err := n.AttemptErrorRecovery(context.Background(), "tickets")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1, d.reloads)
		assert.Len(t, d.navigations, 1)
	})

	t.Run("unknown page", func(t *testing.T) {
		d := newFakeDriver(1280, 800)
		n, _ := newTestNavigator(t, d, nil)
		ok, err := n.AttemptErrorRecovery(context.Background(), "billing")
		assert.False(t, ok)
		var unknown *selectors.UnknownPageError
		assert.ErrorAs(t, err, &unknown)
		assert.Zero(t, d.reloads)
	})
}
