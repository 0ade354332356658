// File: internal/browser/cdp_driver_integration_test.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/navigator/internal/config"
)

const fixturePage = `<!doctype html>
<html><head><title>Tickets | Helpdesk</title></head>
<body>
  <nav><a id="go" href="/customers" style="display:inline-block;width:80px;height:44px">Customers</a></nav>
  <button id="hidden" style="display:none">Hidden</button>
  <div id="cover-target" style="position:absolute;top:200px;left:0;width:50px;height:50px">under</div>
  <div style="position:absolute;top:200px;left:0;width:60px;height:60px;background:#fff">overlay</div>
</body></html>`

func newBrowserTestDriver(t *testing.T) (*CDPDriver, *httptest.Server) {
	t.Helper()
	if os.Getenv("NAVIGATOR_BROWSER_TESTS") == "" {
		t.Skip("set NAVIGATOR_BROWSER_TESTS=1 to run tests against a local Chrome")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "<html><head><title>Not Found</title></head><body>404 page not found</body></html>")
		case "/customers":
			fmt.Fprint(w, "<html><head><title>Customers</title></head><body><main>customers</main></body></html>")
		default:
			fmt.Fprint(w, fixturePage)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.NewDefaultConfig().Browser()
	cfg.Headless = true
	cfg.IdleQuietPeriod = 100 * time.Millisecond

	d, err := NewCDPDriver(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, srv
}

func TestCDPDriverIntegration(t *testing.T) {
	d, srv := newBrowserTestDriver(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	require.NoError(t, d.Navigate(ctx, srv.URL+"/tickets"))
	require.NoError(t, d.WaitForNetworkIdle(ctx, 5*time.Second))

	title, err := d.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tickets | Helpdesk", title)

	status, err := d.DocumentStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	t.Run("query reports visibility and hit testing", func(t *testing.T) {
		els, err := d.QueryElements(ctx, "#go")
		require.NoError(t, err)
		require.Len(t, els, 1)
		assert.True(t, els[0].Usable())
		assert.Equal(t, "a", els[0].Tag)
		assert.Equal(t, "Customers", els[0].Text)

		hidden, err := d.QueryElements(ctx, "#hidden")
		require.NoError(t, err)
		require.Len(t, hidden, 1)
		assert.False(t, hidden[0].Visible)

		covered, err := d.QueryElements(ctx, "#cover-target")
		require.NoError(t, err)
		require.Len(t, covered, 1)
		assert.False(t, covered[0].Interactable)

		none, err := d.QueryElements(ctx, ".does-not-exist")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("xpath selectors", func(t *testing.T) {
		els, err := d.QueryElements(ctx, "xpath=//a[contains(., 'Customers')]")
		require.NoError(t, err)
		assert.Len(t, els, 1)
	})

	t.Run("viewport resize", func(t *testing.T) {
		require.NoError(t, d.SetViewportSize(ctx, 375, 667))
		w, h, err := d.ViewportSize(ctx)
		require.NoError(t, err)
		assert.Equal(t, 375, w)
		assert.Equal(t, 667, h)
	})

	t.Run("click navigates", func(t *testing.T) {
		require.NoError(t, d.SetViewportSize(ctx, 1280, 800))
		els, err := d.QueryElements(ctx, "#go")
		require.NoError(t, err)
		require.NoError(t, d.Click(ctx, els[0]))
		assert.Eventually(t, func() bool {
			u, err := d.CurrentURL(ctx)
			return err == nil && u == srv.URL+"/customers"
		}, 10*time.Second, 100*time.Millisecond)
	})

	t.Run("error document status", func(t *testing.T) {
		require.NoError(t, d.Navigate(ctx, srv.URL+"/missing"))
		status, err := d.DocumentStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, status)

		body, err := d.BodyText(ctx)
		require.NoError(t, err)
		assert.Contains(t, body, "404")
	})
}
