// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/navigator/internal/browser"
	"github.com/xkilldash9x/navigator/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

var _ config.Interface = (*MockConfig)(nil)

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Navigation() config.NavigationConfig {
	args := m.Called()
	return args.Get(0).(config.NavigationConfig)
}

func (m *MockConfig) SetBrowserHeadless(b bool)             { m.Called(b) }
func (m *MockConfig) SetBrowserDevice(d string)             { m.Called(d) }
func (m *MockConfig) SetNavigationDefaultViewport(v string) { m.Called(v) }
func (m *MockConfig) SetNavigationMaxRetries(n int)         { m.Called(n) }

// -- Driver Mock --

// MockDriver mocks browser.Driver. It does not implement browser.StatusReporter;
// wrap it in MockStatusDriver for that.
type MockDriver struct {
	mock.Mock
}

var _ browser.Driver = (*MockDriver)(nil)

func (m *MockDriver) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockDriver) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDriver) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) Title(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) BodyText(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) QueryElements(ctx context.Context, selector string) ([]browser.Element, error) {
	args := m.Called(ctx, selector)
	var els []browser.Element
	if v := args.Get(0); v != nil {
		els = v.([]browser.Element)
	}
	return els, args.Error(1)
}

func (m *MockDriver) Click(ctx context.Context, el browser.Element) error {
	args := m.Called(ctx, el)
	return args.Error(0)
}

func (m *MockDriver) SetViewportSize(ctx context.Context, width, height int) error {
	args := m.Called(ctx, width, height)
	return args.Error(0)
}

func (m *MockDriver) ViewportSize(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockDriver) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	args := m.Called(ctx, timeout)
	return args.Error(0)
}

func (m *MockDriver) WaitForTimeout(ctx context.Context, d time.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockStatusDriver is a MockDriver that also reports document status.
type MockStatusDriver struct {
	MockDriver
}

var _ browser.StatusReporter = (*MockStatusDriver)(nil)

func (m *MockStatusDriver) DocumentStatus(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
