// Package tui is the interactive BubbleTea front end for frz: a single
// search box over a filesystem index, driven by the Event Loop spec.md
// §4.4 describes. It owns the UI-side App State, pumps the Indexer and
// Search Runtime's action channels on a fixed frame cadence, and issues a
// query on every keystroke (no debounce — the shared CancellationRegister
// already makes an abandoned query cheap, so there is nothing for a
// UI-side timer to save).
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/screenager/frz/internal/action"
	"github.com/screenager/frz/internal/app"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/indexer"
	"github.com/screenager/frz/internal/search"
)

// Frame-loop tuning (spec.md §4.4, §6 "Tuning constants").
const (
	maxIndexUpdatesPerTick = 32
	maxIndexProcessingTime = 8 * time.Millisecond
	frameInterval          = 16 * time.Millisecond
)

// ── Palette ──────────────────────────────────────────────────────────────────

var (
	colorAccent  = lipgloss.Color("#7C6AF7")
	colorDim     = lipgloss.Color("#555555")
	colorMuted   = lipgloss.Color("#888888")
	colorText    = lipgloss.Color("#DDDDDD")
	colorSubdued = lipgloss.Color("#444444")
	colorScore   = lipgloss.Color("#5ECEF5")
	colorErr     = lipgloss.Color("#FF6B6B")
	colorGreen   = lipgloss.Color("#5AF078")

	sTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	sAccent  = lipgloss.NewStyle().Foreground(colorAccent)
	sDim     = lipgloss.NewStyle().Foreground(colorDim)
	sMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	sScore   = lipgloss.NewStyle().Foreground(colorScore).Bold(true)
	sPath    = lipgloss.NewStyle().Foreground(colorText)
	sDir     = lipgloss.NewStyle().Foreground(colorMuted)
	sErr     = lipgloss.NewStyle().Foreground(colorErr)
	sGreen   = lipgloss.NewStyle().Foreground(colorGreen)
	sSel     = lipgloss.NewStyle().Background(lipgloss.Color("#1E1A3A")).Foreground(colorText)
	sHint    = lipgloss.NewStyle().Foreground(colorDim).Background(lipgloss.Color("#111111"))
	sDivider = lipgloss.NewStyle().Foreground(colorSubdued)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type spinTickMsg struct{}

func spinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return spinTickMsg{} })
}

type frameTickMsg struct{}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameTickMsg{} })
}

// Outcome is frz's (accepted, query, selection) result (spec.md §6
// "CLI surface", §8 "Cancel via Escape").
type Outcome struct {
	Accepted  bool
	Query     string
	Selection *fsrow.Row
}

// Model is the BubbleTea application model.
type Model struct {
	state      *app.State
	input      textinput.Model
	indexChan  *action.Chan[indexer.View]
	searchChan *action.Chan[search.View]
	cancelReg  *action.CancellationRegister
	runtime    *search.Runtime

	spinFrame int
	width     int
	height    int

	contextLabel string
	err          error
	quitting     bool
	outcome      Outcome
}

// New builds a Model wired to the given State, index/search channels,
// cancellation register, and Search Runtime. initialQuery seeds the text
// input the way frz's --initial-query flag (or .frz.toml) does.
func New(
	state *app.State,
	indexChan *action.Chan[indexer.View],
	searchChan *action.Chan[search.View],
	cancelReg *action.CancellationRegister,
	runtime *search.Runtime,
	initialQuery string,
	contextLabel string,
) Model {
	ti := textinput.New()
	ti.Placeholder = "search files…"
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 60
	ti.PromptStyle = sAccent
	ti.Prompt = "❯ "
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.SetValue(initialQuery)

	return Model{
		state:        state,
		input:        ti,
		indexChan:    indexChan,
		searchChan:   searchChan,
		cancelReg:    cancelReg,
		runtime:      runtime,
		contextLabel: contextLabel,
	}
}

// Outcome returns the result the caller should act on once the program
// exits. Valid only after Update has returned a tea.Quit command.
func (m Model) Outcome() Outcome { return m.outcome }

// Init starts the spinner and frame tick, and issues the seeded query (if
// any) immediately — spec.md §4.4's "before first-frame user input, every
// index update aggressively issues a refresh" covers the index side; this
// covers the case where --initial-query pre-populates the box.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, spinTick(), frameTick()}
	if strings.TrimSpace(m.input.Value()) != "" {
		cmds = append(cmds, m.issueQueryCmd(m.input.Value()))
	}
	return tea.Batch(cmds...)
}

// Update implements the Event Loop (spec.md §4.4). BubbleTea's message
// pump already serializes one event per Update call, so steps 1-2 of the
// spec's frame loop collapse into the tea.KeyMsg/WindowSizeMsg cases below;
// frameTickMsg implements the bounded index pump, the unconditional search
// pump and the reschedule. The spinner advances on its own spinTickMsg, and
// BubbleTea draws a frame after every Update.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 8
		return m, nil

	case spinTickMsg:
		m.spinFrame = (m.spinFrame + 1) % len(spinnerFrames)
		return m, spinTick()

	case frameTickMsg:
		refresh := m.pumpIndexUpdates()
		m.pumpSearchResults()
		if refresh {
			id := m.state.IssueQuery()
			return m, tea.Batch(m.queryCmd(id, m.input.Value()), frameTick())
		}
		return m, frameTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m.quit(Outcome{Accepted: false, Query: m.input.Value()})

		case "esc":
			// Single-stage: exit immediately with the query preserved
			// (spec.md §8 "Cancel via Escape"; see SPEC_FULL.md §C.4).
			return m.quit(Outcome{Accepted: false, Query: m.input.Value()})

		case "enter":
			row, ok := m.state.SelectedRow()
			out := Outcome{Accepted: true, Query: m.input.Value()}
			if ok {
				out.Selection = &row
			}
			return m.quit(out)

		case "up", "ctrl+p":
			m.state.MoveCursor(-1)
			return m, nil

		case "down", "ctrl+n":
			m.state.MoveCursor(1)
			return m, nil
		}
	}

	prevVal := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prevVal {
		m.state.Revision.OnKeystroke()
		id := m.state.IssueQuery()
		return m, tea.Batch(cmd, m.queryCmd(id, m.input.Value()))
	}
	return m, cmd
}

func (m Model) quit(out Outcome) (tea.Model, tea.Cmd) {
	m.quitting = true
	m.outcome = out
	m.runtime.Shutdown()
	return m, tea.Quit
}

// issueQueryCmd is Init's seeded-query path: it records the issuance through
// IssueQuery as a keystroke does, but is not counted as a user keystroke.
func (m Model) issueQueryCmd(query string) tea.Cmd {
	id := m.state.IssueQuery()
	return m.queryCmd(id, query)
}

// queryCmd stores id in the shared CancellationRegister and forwards it to
// the Search Runtime. Returning a tea.Cmd (rather than doing this inline in
// Update) keeps the side effect visible in the message trace during tests.
func (m Model) queryCmd(id uint64, query string) tea.Cmd {
	return func() tea.Msg {
		m.cancelReg.Store(id)
		m.runtime.Query(id, query)
		return nil
	}
}

// pumpIndexUpdates implements frame-loop step 3: drain up to
// maxIndexUpdatesPerTick envelopes or until maxIndexProcessingTime elapses,
// applying each to state and forwarding a matching mutation into the
// Search Runtime's own copy of the dataset. It returns whether a refresh
// should be auto-issued per spec.md §4.4's revision rule.
func (m Model) pumpIndexUpdates() bool {
	deadline := time.Now().Add(maxIndexProcessingTime)
	refresh := false

	for i := 0; i < maxIndexUpdatesPerTick; i++ {
		if time.Now().After(deadline) {
			break
		}
		select {
		case env := <-m.indexChan.Recv():
			env.Mutate(m.state)
			if m.state.LastIndexChanged {
				m.state.Revision.OnIndexUpdate()
				m.forwardIndexUpdateToRuntime()
				if m.state.Revision.ShouldAutoRefresh(m.state.InFlight) {
					refresh = true
				}
			}
		default:
			return refresh
		}
	}
	return refresh
}

// forwardIndexUpdateToRuntime mirrors the UI's just-applied dataset change
// into the Search Runtime's independent copy (spec.md §5: "the two
// datasets may be transiently inconsistent but converge"). It sends a full
// copy of the UI's dataset rather than deriving a diff.
func (m Model) forwardIndexUpdateToRuntime() {
	snapshot := m.state.Dataset.Clone()
	m.runtime.Update(func(data *fsrow.SearchData) {
		*data = snapshot
	})
}

// pumpSearchResults implements frame-loop step 4: drain unconditionally,
// dropping any envelope whose id no longer matches CurrentQueryID.
func (m Model) pumpSearchResults() {
	for {
		select {
		case env := <-m.searchChan.Recv():
			if env.ID != m.state.CurrentQueryID {
				continue
			}
			env.Mutate(m.state)
		default:
			return
		}
	}
}

// ── View ─────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	var b strings.Builder
	w := m.width
	divider := sDivider.Render(strings.Repeat("─", clamp(w-2, 10, 200)))

	left := "  " + sTitle.Render("frz") + "  " + sMuted.Render("fuzzy file finder")
	if m.state.InFlight {
		left += "  " + sAccent.Render(spinnerFrames[m.spinFrame])
	}
	status, _ := m.state.Progress.Status(map[string]string{m.contextLabel: m.contextLabel})
	right := sDim.Render(status)
	fmt.Fprintln(&b, padBetween(left, right, w))

	fmt.Fprintln(&b, "  "+m.input.View())
	fmt.Fprintln(&b, "  "+divider)

	switch {
	case m.err != nil:
		fmt.Fprintln(&b, sErr.Render("  error: "+m.err.Error()))
	case len(m.state.Filtered) == 0 && m.input.Value() == "":
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, sMuted.Render("  Start typing to filter files."))
	case len(m.state.Filtered) == 0:
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, sMuted.Render("  no matches for ")+sAccent.Render("\""+m.input.Value()+"\""))
	default:
		m.renderResults(&b, m.height-6)
	}

	b.WriteString("\n  " + divider + "\n")
	m.renderStatusBar(&b)

	return b.String()
}

func (m Model) renderResults(b *strings.Builder, maxRows int) {
	if maxRows < 1 {
		maxRows = 1
	}
	for i, idx := range m.state.Filtered {
		if i >= maxRows {
			fmt.Fprintf(b, "  %s\n", sDim.Render(fmt.Sprintf("  … %d more", len(m.state.Filtered)-i)))
			break
		}
		if idx < 0 || idx >= len(m.state.Dataset.Rows) {
			continue
		}
		row := m.state.Dataset.Rows[idx]

		score := "     "
		if i < len(m.state.Scores) && m.state.Scores[i] > 0 {
			score = fmt.Sprintf("%5d", m.state.Scores[i])
		}

		dir := truncatedDir(row)
		base := filepath.Base(row.Display)
		line := fmt.Sprintf("  %s  %s%s", sScore.Render(score), sDir.Render(dir+"/"), sPath.Render(base))

		if i == m.state.Cursor {
			raw := score + "  " + dir + "/" + base
			pad := clamp(m.width-len(raw)-3, 0, m.width)
			line = sSel.Render("  " + sScore.Render(score) + "  " + sDir.Render(dir+"/") + sPath.Render(base) + strings.Repeat(" ", pad))
		}
		fmt.Fprintln(b, line)
	}
}

// truncatedDir returns row's directory component, honoring its truncation
// hint when the full path would overflow the left column — Left means the
// filename is the part worth keeping, so it is the directory that gets an
// ellipsis prefix instead.
func truncatedDir(row fsrow.Row) string {
	dir := filepath.Dir(row.Display)
	const maxDirLen = 40
	if row.Truncation.Left && len(dir) > maxDirLen {
		return "…" + dir[len(dir)-maxDirLen+1:]
	}
	if row.Truncation.Right && len(dir) > maxDirLen {
		return dir[:maxDirLen-1] + "…"
	}
	return dir
}

func (m Model) renderStatusBar(b *strings.Builder) {
	var left string
	n := len(m.state.Filtered)
	switch {
	case n > 0:
		left = sGreen.Render(fmt.Sprintf("  %d match", n))
		if n != 1 {
			left += sGreen.Render("es")
		}
	case m.err != nil:
		left = "  " + sErr.Render(m.err.Error())
	default:
		left = sDim.Render("  no matches")
	}

	right := sHint.Render("  ↑↓ nav  enter select  esc cancel  ^c quit  ")
	fmt.Fprint(b, padBetween(left, right, m.width))
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// padBetween pads left and right strings to fill width.
func padBetween(left, right string, width int) string {
	lv := visibleLen(left)
	rv := visibleLen(right)
	gap := width - lv - rv - 2
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// visibleLen estimates printable character count (strips common ANSI sequences).
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, c := range s {
		if c == '\x1b' {
			inEsc = true
		}
		if inEsc {
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
