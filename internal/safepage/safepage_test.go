package safepage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"selfHealing/internal/browser"
	"selfHealing/internal/repair"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func timeoutErr(selector string) error {
	return fmt.Errorf("%w: Timeout 30000ms exceeded waiting for locator('%s')", browser.ErrElementNotFound, selector)
}

type fixture struct {
	page     *MockPage
	repairer *MockRepairer
	logs     *observer.ObservedLogs
	events   []HealEvent
	safe     *Page
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		page:     new(MockPage),
		repairer: new(MockRepairer),
		logs:     logs,
	}

	cfg.Logger = zap.New(core)
	cfg.OnHeal = func(e HealEvent) { f.events = append(f.events, e) }
	f.safe = New(f.page, f.repairer, cfg)

	return f
}

func TestClick_NoHealing(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.page.On("Click", ctx, "#button", browser.ClickOptions{Timeout: 30 * time.Second}).Return(nil).Once()

	require.NoError(t, f.safe.Click(ctx, "#button"))

	f.page.AssertExpectations(t)
	f.page.AssertNumberOfCalls(t, "Click", 1)
	f.repairer.AssertNotCalled(t, "ProposeLocator", mock.Anything, mock.Anything)
	assert.Zero(t, f.logs.FilterMessageSnippet("HEALED").Len())
	assert.Empty(t, f.events)
}

func TestClick_HealsOnTimeout(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	opts := browser.ClickOptions{Timeout: 30 * time.Second}
	html := "<html><body>content</body></html>"
	firstErr := timeoutErr("#old-button")

	f.page.On("Click", ctx, "#old-button", opts).Return(firstErr).Once()
	f.page.On("Content", ctx).Return(html, nil).Once()
	f.repairer.On("ProposeLocator", ctx, repair.FailureContext{
		Locator: "#old-button",
		Markup:  html,
		Error:   firstErr.Error(),
	}).Return("button.new-selector", nil).Once()
	f.page.On("Click", ctx, "button.new-selector", opts).Return(nil).Once()

	require.NoError(t, f.safe.Click(ctx, "#old-button"))

	f.page.AssertExpectations(t)
	f.repairer.AssertExpectations(t)
	f.page.AssertNumberOfCalls(t, "Click", 2)
	assert.Equal(t, "#old-button", f.page.Calls[0].Arguments.String(1))
	assert.Equal(t, "button.new-selector", f.page.Calls[2].Arguments.String(1))

	healed := f.logs.FilterMessageSnippet("HEALED").All()
	require.Len(t, healed, 1)
	assert.Equal(t, zapcore.InfoLevel, healed[0].Level)
	assert.Equal(t, "HEALED: replaced '#old-button' with 'button.new-selector'", healed[0].Message)
	assert.Equal(t, "#old-button → button.new-selector", healed[0].ContextMap()["record"])

	assert.Equal(t, []HealEvent{{Action: "click", Original: "#old-button", Healed: "button.new-selector"}}, f.events)
}

func TestFill_HealsWithSameValueAndOptions(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	opts := browser.FillOptions{Timeout: 10 * time.Second, Force: true}

	f.page.On("Fill", ctx, "#old-input", "test data", opts).Return(timeoutErr("#old-input")).Once()
	f.page.On("Content", ctx).Return("<html><input name=\"username\"></html>", nil).Once()
	f.repairer.On("ProposeLocator", ctx, mock.AnythingOfType("repair.FailureContext")).
		Return(`input[name="username"]`, nil).Once()
	f.page.On("Fill", ctx, `input[name="username"]`, "test data", opts).Return(nil).Once()

	require.NoError(t, f.safe.Fill(ctx, "#old-input", "test data", opts))

	f.page.AssertExpectations(t)
	f.repairer.AssertExpectations(t)
	f.page.AssertNumberOfCalls(t, "Fill", 2)
}

func TestFill_NoHealing(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.page.On("Fill", ctx, "#input", "test value", browser.FillOptions{Timeout: 30 * time.Second}).Return(nil).Once()

	require.NoError(t, f.safe.Fill(ctx, "#input", "test value"))

	f.page.AssertExpectations(t)
	f.repairer.AssertNotCalled(t, "ProposeLocator", mock.Anything, mock.Anything)
}

func TestClick_RepairFails(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	repairErr := &repair.InvocationError{Err: errors.New("429 Too Many Requests")}

	f.page.On("Click", ctx, "#old-button", mock.Anything).Return(timeoutErr("#old-button")).Once()
	f.page.On("Content", ctx).Return("<html></html>", nil).Once()
	f.repairer.On("ProposeLocator", ctx, mock.Anything).Return("", repairErr).Once()

	err := f.safe.Click(ctx, "#old-button")

	var healErr *HealingError
	require.True(t, errors.As(err, &healErr))
	assert.Equal(t, StageRepair, healErr.Stage)
	assert.Contains(t, err.Error(), "#old-button")
	assert.Contains(t, err.Error(), "429 Too Many Requests")

	var invErr *repair.InvocationError
	assert.True(t, errors.As(err, &invErr))
	assert.ErrorIs(t, err, browser.ErrElementNotFound)

	f.page.AssertNumberOfCalls(t, "Click", 1)
	assert.Empty(t, f.events)
}

func TestClick_RetryFails(t *testing.T) {
	tests := []struct {
		name     string
		retryErr error
	}{
		{name: "healed selector also not found", retryErr: timeoutErr("button.new-selector")},
		{name: "healed selector hits other error", retryErr: errors.New("element is not enabled")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			ctx := context.Background()

			f.page.On("Click", ctx, "#old-button", mock.Anything).Return(timeoutErr("#old-button")).Once()
			f.page.On("Content", ctx).Return("<html></html>", nil).Once()
			f.repairer.On("ProposeLocator", ctx, mock.Anything).Return("button.new-selector", nil).Once()
			f.page.On("Click", ctx, "button.new-selector", mock.Anything).Return(tt.retryErr).Once()

			err := f.safe.Click(ctx, "#old-button")

			var healErr *HealingError
			require.True(t, errors.As(err, &healErr))
			assert.Equal(t, StageRetry, healErr.Stage)
			assert.Equal(t, "button.new-selector", healErr.Healed)
			assert.Contains(t, err.Error(), "#old-button")
			assert.Contains(t, err.Error(), "button.new-selector")
			assert.Contains(t, err.Error(), tt.retryErr.Error())

			f.page.AssertNumberOfCalls(t, "Click", 2)
			f.repairer.AssertNumberOfCalls(t, "ProposeLocator", 1)
			assert.Zero(t, f.logs.FilterMessageSnippet("HEALED:").Len())
		})
	}
}

func TestClick_NonHealableError(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	navErr := errors.New("Frame was detached")

	f.page.On("Click", ctx, "#button", mock.Anything).Return(navErr)

	for i := 0; i < 3; i++ {
		err := f.safe.Click(ctx, "#button")

		var actionErr *ActionError
		require.True(t, errors.As(err, &actionErr))
		assert.ErrorIs(t, err, navErr)
		assert.Contains(t, err.Error(), "Frame was detached")

		var healErr *HealingError
		assert.False(t, errors.As(err, &healErr))
	}

	f.page.AssertNumberOfCalls(t, "Click", 3)
	f.page.AssertNotCalled(t, "Content", mock.Anything)
	f.repairer.AssertNotCalled(t, "ProposeLocator", mock.Anything, mock.Anything)
}

func TestPerform_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeded", func(t *testing.T) {
		f := newFixture(t, Config{})

		out, err := f.safe.Perform(ctx, "hover", "#menu", func(context.Context, string) error { return nil })

		require.NoError(t, err)
		assert.Equal(t, Outcome{Status: StatusSucceeded, Original: "#menu"}, out)
	})

	t.Run("healed", func(t *testing.T) {
		f := newFixture(t, Config{})
		f.page.On("Content", ctx).Return("<nav></nav>", nil)
		f.repairer.On("ProposeLocator", ctx, mock.Anything).Return("nav .menu", nil)

		var selectors []string
		out, err := f.safe.Perform(ctx, "hover", "#menu", func(_ context.Context, selector string) error {
			selectors = append(selectors, selector)
			if selector == "#menu" {
				return timeoutErr(selector)
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, Outcome{Status: StatusHealed, Original: "#menu", Healed: "nav .menu"}, out)
		assert.Equal(t, []string{"#menu", "nav .menu"}, selectors)
		assert.Equal(t, "healed", out.Status.String())
	})

	t.Run("failed", func(t *testing.T) {
		f := newFixture(t, Config{})

		out, err := f.safe.Perform(ctx, "hover", "#menu", func(context.Context, string) error {
			return errors.New("boom")
		})

		require.Error(t, err)
		assert.Equal(t, StatusFailed, out.Status)
	})
}

func TestSnapshot_LimitsContent(t *testing.T) {
	f := newFixture(t, Config{DOMLimit: 2000})
	ctx := context.Background()

	f.page.On("Content", ctx).Return(strings.Repeat("a", 5000), nil)

	snapshot := f.safe.snapshot(ctx)

	assert.Len(t, snapshot, 2000)
	assert.Equal(t, strings.Repeat("a", 2000), snapshot)
}

func TestSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		html  string
		want  string
	}{
		{name: "default limit", limit: 0, html: strings.Repeat("b", 2500), want: strings.Repeat("b", 2000)},
		{name: "shorter than limit", limit: 3000, html: "<html></html>", want: "<html></html>"},
		{name: "exactly limit", limit: 4, html: "abcd", want: "abcd"},
		{name: "multibyte runes", limit: 3, html: "ПриветМир", want: "При"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{DOMLimit: tt.limit})
			f.page.On("Content", mock.Anything).Return(tt.html, nil)

			assert.Equal(t, tt.want, f.safe.snapshot(context.Background()))
		})
	}
}

func TestSnapshot_CaptureErrorDoesNotAbortHealing(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	f.page.On("Click", ctx, "#old-button", mock.Anything).Return(timeoutErr("#old-button")).Once()
	f.page.On("Content", ctx).Return("", errors.New("page crashed")).Once()
	f.repairer.On("ProposeLocator", ctx, mock.MatchedBy(func(fc repair.FailureContext) bool {
		return fc.Markup == "<error capturing DOM: page crashed>"
	})).Return("#new-button", nil).Once()
	f.page.On("Click", ctx, "#new-button", mock.Anything).Return(nil).Once()

	require.NoError(t, f.safe.Click(ctx, "#old-button"))

	f.repairer.AssertExpectations(t)
}

func TestSnapshot_PlaceholderIsBounded(t *testing.T) {
	f := newFixture(t, Config{DOMLimit: 10})
	f.page.On("Content", mock.Anything).Return("", errors.New("target closed"))

	snapshot := f.safe.snapshot(context.Background())

	assert.Equal(t, "<error cap", snapshot)
}

func TestTruncate_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "markup")
		limit := rapid.IntRange(1, 64).Draw(t, "limit")

		got := truncate(s, limit)

		n := utf8.RuneCountInString(s)
		want := min(n, limit)
		if c := utf8.RuneCountInString(got); c != want {
			t.Fatalf("truncate(%q, %d) has %d runes, want %d", s, limit, c, want)
		}
		if !strings.HasPrefix(s, got) {
			t.Fatalf("truncate(%q, %d) = %q is not a prefix", s, limit, got)
		}
	})
}

func TestPassThrough(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	gotoErr := errors.New("net::ERR_NAME_NOT_RESOLVED")

	f.page.On("Goto", ctx, "https://example.com", browser.NavigateOptions{}).Return(gotoErr).Once()
	f.page.On("WaitForSelector", ctx, "#element", browser.WaitOptions{State: "visible"}).Return(timeoutErr("#element")).Once()
	f.page.On("Locator", "li.item").Return(stubLocator{count: 3}).Once()
	f.page.On("URL").Return("https://example.com/page").Once()
	f.page.On("Screenshot", ctx, browser.ScreenshotOptions{Path: "test.png"}).Return([]byte("png"), nil).Once()
	f.page.On("Close").Return(nil).Once()

	assert.Equal(t, gotoErr, f.safe.Goto(ctx, "https://example.com"))

	err := f.safe.WaitForSelector(ctx, "#element", browser.WaitOptions{State: "visible"})
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
	var healErr *HealingError
	assert.False(t, errors.As(err, &healErr))

	count, err := f.safe.Locator("li.item").Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.Equal(t, "https://example.com/page", f.safe.URL())

	data, err := f.safe.Screenshot(ctx, browser.ScreenshotOptions{Path: "test.png"})
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, f.safe.Close())

	f.page.AssertExpectations(t)
	f.repairer.AssertNotCalled(t, "ProposeLocator", mock.Anything, mock.Anything)
}

func TestErrors_Messages(t *testing.T) {
	cause := timeoutErr("#a")

	repairErr := &HealingError{Stage: StageRepair, Action: "click", Original: "#a", Cause: cause, Err: errors.New("auth")}
	assert.Contains(t, repairErr.Error(), "'#a'")
	assert.Contains(t, repairErr.Error(), "auth")
	assert.Contains(t, repairErr.Error(), "Timeout 30000ms exceeded")

	retryErr := &HealingError{Stage: StageRetry, Action: "fill", Original: "#a", Healed: "#b", Cause: cause, Err: errors.New("detached")}
	assert.Contains(t, retryErr.Error(), "'#a'")
	assert.Contains(t, retryErr.Error(), "'#b'")
	assert.Contains(t, retryErr.Error(), "detached")

	assert.True(t, IsHealable(cause))
	assert.False(t, IsHealable(errors.New("timeout")))
	assert.False(t, IsHealable(nil))
}
