package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guregu/null/v6"

	"sentidash/internal/dashboard"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

type stubFetcher struct{}

func (stubFetcher) FetchSummary(_ context.Context, product string) (*upstream.Summary, error) {
	if product == "hat" {
		return &upstream.Summary{
			ASIN:       "B0HAT",
			Historical: upstream.Aggregate{Average: null.FloatFrom(0.5), Trend: "Stable"},
			Forecast:   upstream.Aggregate{Message: "No forecast available"},
		}, nil
	}
	return nil, upstream.ErrNotFound
}

func (stubFetcher) FetchGraph(_ context.Context, product string) (*upstream.Graph, error) {
	if product != "hat" {
		return nil, upstream.ErrLoadFailed
	}
	return &upstream.Graph{
		ASIN:      "B0HAT",
		Sentiment: []series.RawPoint{series.Point("2024-01-02", 0.3), series.Point("2024-01-01", 0.1)},
		Forecast:  []series.RawPoint{series.Point("2024-01-03", 0.4)},
	}, nil
}

func newTestModel(t *testing.T) model {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := dashboard.NewService(stubFetcher{}, dashboard.NewCatalog([]string{"hat", "kit"}), dashboard.WithLogger(quiet))
	m := initialModel(svc, series.DefaultDisplayLayout, time.Second, quiet)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(model)
}

func press(t *testing.T, m model, key string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(model)
}

func TestSelectFetchesSummary(t *testing.T) {
	m := newTestModel(t)
	if m.state.CanShowTrend() {
		t.Error("trend enabled before any selection")
	}

	m, cmd := press(t, m, "enter")
	if !m.state.Loading || m.state.Selected != "hat" {
		t.Fatalf("state after enter = %+v", m.state)
	}
	m = run(t, m, cmd)
	if m.state.Summary == nil || m.state.Summary.ASIN != "B0HAT" {
		t.Fatalf("summary not applied: %+v", m.state)
	}

	out := m.renderContent()
	for _, want := range []string{"B0HAT", "0.5", "Stable →", "No forecast available"} {
		if !strings.Contains(out, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestSelectFailureShowsMessage(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "down")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	if m.state.Err != dashboard.SummaryFailedMessage {
		t.Errorf("Err = %q, want %q", m.state.Err, dashboard.SummaryFailedMessage)
	}
	if !m.state.CanShowTrend() {
		t.Error("trend should stay enabled after a failed summary")
	}
	if !strings.Contains(m.renderContent(), dashboard.SummaryFailedMessage) {
		t.Error("failure message not rendered")
	}
}

func TestStaleSummaryDiscarded(t *testing.T) {
	m := newTestModel(t)
	m, first := press(t, m, "enter")
	m, _ = press(t, m, "down")
	m, second := press(t, m, "enter")

	// The response for "hat" arrives after "kit" was selected.
	m = run(t, m, first)
	if m.state.Selected != "kit" || m.state.Summary != nil || !m.state.Loading {
		t.Fatalf("stale response applied: %+v", m.state)
	}
	m = run(t, m, second)
	if m.state.Loading || m.state.Err != dashboard.SummaryFailedMessage {
		t.Errorf("current response not applied: %+v", m.state)
	}
}

func TestGraphScreen(t *testing.T) {
	m := newTestModel(t)
	if _, cmd := press(t, m, "g"); cmd != nil {
		t.Error("g without a selection should do nothing")
	}

	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)
	m, cmd = press(t, m, "g")
	if m.state.Screen != dashboard.ScreenGraph || !m.state.Loading {
		t.Fatalf("state after g = %+v", m.state)
	}
	m = run(t, m, cmd)

	if len(m.state.Series) != 3 {
		t.Fatalf("series len = %d, want 3", len(m.state.Series))
	}
	out := m.renderContent()
	for _, want := range []string{"1/1/2024", "1/3/2024", "Current Sentiment", "Future Prediction"} {
		if !strings.Contains(out, want) {
			t.Errorf("graph content missing %q", want)
		}
	}
	if strings.Index(out, "1/1/2024") > strings.Index(out, "1/2/2024") {
		t.Error("rows not in chronological order")
	}

	m, cmd = press(t, m, "esc")
	if m.state.Screen != dashboard.ScreenSelect || m.state.Selected != "hat" {
		t.Errorf("state after esc = %+v", m.state)
	}
	if cmd == nil {
		t.Error("going back should refetch the summary")
	}
}

func TestGraphResultAfterBackDiscarded(t *testing.T) {
	m := newTestModel(t)
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)
	m, graphCmd := press(t, m, "g")
	m, _ = press(t, m, "esc")

	m = run(t, m, graphCmd)
	if m.state.Screen != dashboard.ScreenSelect || m.state.Series != nil {
		t.Errorf("late graph response changed the state: %+v", m.state)
	}
}

func TestGraphFailure(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "g")
	m = run(t, m, cmd)

	if m.state.Err != dashboard.GraphFailedMessage {
		t.Errorf("Err = %q, want %q", m.state.Err, dashboard.GraphFailedMessage)
	}
	if !strings.Contains(m.renderContent(), dashboard.GraphFailedMessage) {
		t.Error("graph failure not rendered")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestFetchErrorIsLoggedNotShown(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, "down")
	m, cmd := press(t, m, "enter")
	msg := cmd().(summaryMsg)
	if !errors.Is(msg.err, upstream.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", msg.err)
	}
	next, _ := m.Update(msg)
	if strings.Contains(next.(model).renderContent(), "not found") {
		t.Error("raw error text leaked to the screen")
	}
}
