package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/screenager/frz/internal/action"
	"github.com/screenager/frz/internal/app"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/indexer"
	"github.com/screenager/frz/internal/search"
)

func newTestModel() (Model, *action.Chan[indexer.View], *action.Chan[search.View]) {
	state := app.New()
	indexChan := action.NewChan[indexer.View](16)
	searchChan := action.NewChan[search.View](16)
	cancelReg := &action.CancellationRegister{}
	rt := search.NewRuntime(searchChan, cancelReg)
	go rt.Run()

	m := New(state, indexChan, searchChan, cancelReg, rt, "", "test-root")
	m.width = 80
	m.height = 24
	return m, indexChan, searchChan
}

func TestEscapeQuitsWithCurrentQueryPreserved(t *testing.T) {
	m, _, _ := newTestModel()
	m.input.SetValue("partial query")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	nm := next.(Model)

	if !nm.quitting {
		t.Fatal("expected quitting=true after Escape")
	}
	if nm.outcome.Accepted {
		t.Fatal("expected Accepted=false after Escape")
	}
	if nm.outcome.Query != "partial query" {
		t.Fatalf("expected query preserved, got %q", nm.outcome.Query)
	}
	if cmd == nil {
		t.Fatal("expected a tea.Cmd (tea.Quit) after Escape")
	}
}

func TestEnterAcceptsSelectedRow(t *testing.T) {
	m, indexChan, _ := newTestModel()

	row := fsrow.NewRow("src/main.go")
	m.state.ApplyIndexUpdate(fsrow.IndexUpdate{Files: []fsrow.Row{row}, Reset: true})
	m.state.ReplaceMatches(fsrow.MatchBatch{Indices: []int{0}, Scores: []uint16{10}})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	nm := next.(Model)

	if !nm.outcome.Accepted {
		t.Fatal("expected Accepted=true after Enter with a selection")
	}
	if nm.outcome.Selection == nil || nm.outcome.Selection.Display != "src/main.go" {
		t.Fatalf("expected selection to be src/main.go, got %+v", nm.outcome.Selection)
	}
	_ = indexChan
}

func TestTypingIssuesANewQuery(t *testing.T) {
	m, _, _ := newTestModel()
	before := m.state.NextQueryID

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	nm := next.(Model)

	if nm.state.NextQueryID <= before {
		t.Fatalf("expected NextQueryID to advance, got %d (was %d)", nm.state.NextQueryID, before)
	}
	if !nm.state.InFlight {
		t.Fatal("expected InFlight=true after issuing a query")
	}
	if cmd == nil {
		t.Fatal("expected a non-nil cmd batch from the keystroke")
	}
}

func TestFrameTickDrainsIndexUpdatesAndAppliesThem(t *testing.T) {
	m, indexChan, _ := newTestModel()

	stream := indexChan.Stream(1, action.KindIndexUpdate)
	row := fsrow.NewRow("a.go")
	stop := make(chan struct{})
	ok := stream.Send(stop, func(v indexer.View) {
		v.ApplyIndexUpdate(fsrow.IndexUpdate{Files: []fsrow.Row{row}, Reset: true})
	}, true)
	if !ok {
		t.Fatal("expected Send to succeed")
	}

	next, _ := m.Update(frameTickMsg{})
	nm := next.(Model)

	if len(nm.state.Dataset.Rows) != 1 || nm.state.Dataset.Rows[0].Display != "a.go" {
		t.Fatalf("expected index update to be applied, got %+v", nm.state.Dataset.Rows)
	}
}

func TestFrameTickDropsStaleSearchResults(t *testing.T) {
	m, _, searchChan := newTestModel()
	m.state.CurrentQueryID = 5

	stream := searchChan.Stream(1, action.KindSearch) // stale: not CurrentQueryID
	stop := make(chan struct{})
	stream.Send(stop, func(v search.View) {
		v.ReplaceMatches(fsrow.MatchBatch{Indices: []int{0}, Scores: []uint16{9}})
	}, true)

	next, _ := m.Update(frameTickMsg{})
	nm := next.(Model)

	if len(nm.state.Filtered) != 0 {
		t.Fatalf("expected stale search envelope to be dropped, got %v", nm.state.Filtered)
	}
}

func TestSpinTickAdvancesFrame(t *testing.T) {
	m, _, _ := newTestModel()
	next, cmd := m.Update(spinTickMsg{})
	nm := next.(Model)
	if nm.spinFrame != 1 {
		t.Fatalf("expected spinFrame=1, got %d", nm.spinFrame)
	}
	if cmd == nil {
		t.Fatal("expected spinTick to reschedule itself")
	}
}
