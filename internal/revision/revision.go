// Package revision implements the counters that arbitrate whether an index
// update should auto-issue a new query (spec.md §4.4, §9 "Revision state").
package revision

// State holds the four counters spec.md §4.4 names: input, pending_result,
// last_applied, last_user_input.
type State struct {
	Input         uint64
	PendingResult uint64
	LastApplied   uint64
	LastUserInput uint64

	UserHasTyped bool
	firstFrame   bool
}

// New returns a State ready for a fresh session. firstFrame starts true so
// the first index update aggressively issues a refresh (spec.md §4.4
// "Before first-frame user input").
func New() *State {
	return &State{firstFrame: true}
}

// OnKeystroke records a user edit: bumps Input and marks LastUserInput,
// flagging that the visible query is now driven by the user rather than
// the system (spec.md §4.4 "Any user keystroke").
func (s *State) OnKeystroke() {
	s.Input++
	s.LastUserInput = s.Input
	s.UserHasTyped = true
	s.firstFrame = false
}

// OnIndexUpdate records that the dataset changed, marking the query dirty
// from the system's side (spec.md §4.4 "Any index update that changes the
// dataset"). If no keystroke was left unresolved before this bump,
// LastUserInput advances with Input — the gap this would otherwise leave is
// reserved for signaling a genuinely unresolved keystroke, not a system-side
// change, so ShouldAutoRefresh can tell the two apart.
func (s *State) OnIndexUpdate() {
	noOutstandingKeystroke := s.Input == s.LastUserInput
	s.Input++
	if noOutstandingKeystroke {
		s.LastUserInput = s.Input
	}
}

// OnQueryIssued records that a search was issued for the current Input
// value (spec.md §4.4 "Issuing a search").
func (s *State) OnQueryIssued() {
	s.PendingResult = s.Input
}

// OnQueryCompleted records that the in-flight query settled (spec.md §4.4
// "On a search completion").
func (s *State) OnQueryCompleted() {
	s.LastApplied = s.PendingResult
	s.LastUserInput = s.LastApplied
}

// ShouldAutoRefresh reports whether an index update should auto-issue a
// refresh, given whether a query is currently in flight (spec.md §4.4
// "After an index update, a refresh should be auto-issued iff...").
func (s *State) ShouldAutoRefresh(inFlight bool) bool {
	if s.firstFrame {
		return true
	}
	if inFlight {
		return false
	}
	if s.Input == s.LastApplied {
		return false
	}
	return s.Input == s.LastUserInput
}
