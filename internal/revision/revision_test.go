package revision

import "testing"

func TestFirstFrameAlwaysRefreshes(t *testing.T) {
	s := New()
	if !s.ShouldAutoRefresh(false) {
		t.Fatal("expected refresh before any user input")
	}
}

func TestNoExtraQueryAfterBurstWithoutCompletion(t *testing.T) {
	s := New()
	s.OnKeystroke() // "a"
	s.OnQueryIssued()
	s.OnKeystroke() // "ap"
	s.OnQueryIssued()
	s.OnKeystroke() // "app"
	s.OnQueryIssued() // in flight for "app", no completion yet

	// An index update lands mid-burst, with no intervening completion.
	s.OnIndexUpdate()

	if s.ShouldAutoRefresh(true) {
		t.Fatal("must not auto-issue an extra query while a result is still in flight")
	}
}

func TestRefreshAfterIndexUpdateWithNoPendingQuery(t *testing.T) {
	s := New()
	s.OnKeystroke()
	s.OnQueryIssued()
	s.OnQueryCompleted()

	s.OnIndexUpdate()

	if !s.ShouldAutoRefresh(false) {
		t.Fatal("expected refresh: dataset changed, no pending query, no outstanding keystroke")
	}
}

func TestNoRefreshWhenUpToDate(t *testing.T) {
	s := New()
	s.OnKeystroke()
	s.OnQueryIssued()
	s.OnQueryCompleted()

	if s.ShouldAutoRefresh(false) {
		t.Fatal("expected no refresh when input == last_applied")
	}
}
