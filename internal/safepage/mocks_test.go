package safepage

import (
	"context"

	"selfHealing/internal/browser"
	"selfHealing/internal/repair"

	"github.com/stretchr/testify/mock"
)

// MockPage mocks browser.Page.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Click(ctx context.Context, selector string, opts browser.ClickOptions) error {
	return m.Called(ctx, selector, opts).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, value string, opts browser.FillOptions) error {
	return m.Called(ctx, selector, value, opts).Error(0)
}

func (m *MockPage) Content(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Goto(ctx context.Context, url string, opts browser.NavigateOptions) error {
	return m.Called(ctx, url, opts).Error(0)
}

func (m *MockPage) WaitForSelector(ctx context.Context, selector string, opts browser.WaitOptions) error {
	return m.Called(ctx, selector, opts).Error(0)
}

func (m *MockPage) Locator(selector string) browser.Locator {
	args := m.Called(selector)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(browser.Locator)
}

func (m *MockPage) URL() string {
	return m.Called().String(0)
}

func (m *MockPage) Screenshot(ctx context.Context, opts browser.ScreenshotOptions) ([]byte, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPage) Close() error {
	return m.Called().Error(0)
}

// MockRepairer mocks the Repairer interface.
type MockRepairer struct {
	mock.Mock
}

func (m *MockRepairer) ProposeLocator(ctx context.Context, fc repair.FailureContext) (string, error) {
	args := m.Called(ctx, fc)
	return args.String(0), args.Error(1)
}

type stubLocator struct {
	count int
}

func (l stubLocator) Count() (int, error)          { return l.count, nil }
func (l stubLocator) IsVisible() (bool, error)     { return l.count > 0, nil }
func (l stubLocator) TextContent() (string, error) { return "", nil }
