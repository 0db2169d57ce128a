package dashboard

import (
	"errors"
	"testing"

	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

func TestSelectClearsPreviousDisplay(t *testing.T) {
	var st State
	st, req := st.Select("hat")
	st = st.ResolveSummary(req, &upstream.Summary{ASIN: "B0HAT"}, nil)
	if st.Summary == nil {
		t.Fatal("summary not applied")
	}

	st, _ = st.Select("kit")
	if st.Summary != nil {
		t.Error("Select kept the previous summary")
	}
	if !st.Loading || st.Err != "" {
		t.Errorf("Select state = %+v, want loading without error", st)
	}
	if st.Selected != "kit" {
		t.Errorf("Selected = %q, want kit", st.Selected)
	}
}

func TestResolveSummaryFailure(t *testing.T) {
	var st State
	st, req := st.Select("hat")
	st = st.ResolveSummary(req, &upstream.Summary{ASIN: "B0HAT"}, nil)

	st, req = st.Select("unicorn")
	st = st.ResolveSummary(req, nil, upstream.ErrNotFound)

	if st.Summary != nil {
		t.Error("failed summary left data on screen")
	}
	if st.Err != SummaryFailedMessage {
		t.Errorf("Err = %q, want %q", st.Err, SummaryFailedMessage)
	}
	if st.Loading {
		t.Error("Loading still set after resolution")
	}
	if !st.CanShowTrend() {
		t.Error("Show Trend should stay available after a failed summary")
	}
}

func TestStaleSummaryIgnored(t *testing.T) {
	var st State
	st, first := st.Select("hat")
	st, second := st.Select("kit")

	// The slow response for the first selection arrives after the second.
	late := st.ResolveSummary(first, &upstream.Summary{ASIN: "B0HAT"}, nil)
	if late.Summary != nil {
		t.Fatal("stale summary was applied")
	}
	if !late.Loading {
		t.Error("stale summary ended loading")
	}

	st = late.ResolveSummary(second, &upstream.Summary{ASIN: "B0KIT"}, nil)
	if st.Summary == nil || st.Summary.ASIN != "B0KIT" {
		t.Errorf("Summary = %+v, want B0KIT", st.Summary)
	}

	again := st.ResolveSummary(second, &upstream.Summary{ASIN: "DUP"}, nil)
	if again.Summary.ASIN != "B0KIT" {
		t.Error("duplicate delivery replaced the summary")
	}
}

func TestStaleGraphIgnoredAfterBack(t *testing.T) {
	var st State
	st, req := st.OpenGraph("hat")
	st = st.Back()

	got := st.ResolveGraph(req, series.MergedSeries{{Date: "1/1/2024"}}, nil)
	if got.Series != nil || got.Screen != ScreenSelect {
		t.Errorf("graph result applied after Back: %+v", got)
	}
	if got.Selected != "hat" {
		t.Errorf("Back lost the selection: %q", got.Selected)
	}
}

func TestResolveGraph(t *testing.T) {
	var st State
	st, req := st.OpenGraph("hat")
	if st.Screen != ScreenGraph || !st.Pending() {
		t.Fatalf("OpenGraph state = %+v", st)
	}

	ok := st.ResolveGraph(req, nil, nil)
	if ok.Series == nil || len(ok.Series) != 0 {
		t.Errorf("empty graph should resolve to an empty series, got %v", ok.Series)
	}

	failed := st.ResolveGraph(req, nil, errors.New("boom"))
	if failed.Err != GraphFailedMessage {
		t.Errorf("Err = %q, want %q", failed.Err, GraphFailedMessage)
	}
	if failed.Pending() || failed.Loading {
		t.Errorf("failed graph still pending: %+v", failed)
	}
}

func TestResolveWrongKind(t *testing.T) {
	var st State
	st, req := st.Select("hat")
	got := st.ResolveGraph(Request{ID: req.ID, Product: "hat", Kind: GraphRequest}, nil, nil)
	if got.Screen != ScreenSelect || !got.Loading {
		t.Errorf("graph result applied to summary request: %+v", got)
	}
}

func TestTransitionsDoNotMutate(t *testing.T) {
	st := State{Selected: "hat", Summary: &upstream.Summary{ASIN: "B0HAT"}}
	_, _ = st.Select("kit")
	_ = st.Back()
	if st.Selected != "hat" || st.Summary == nil {
		t.Errorf("receiver changed: %+v", st)
	}
}
