package eventlog

import "testing"

func TestNewDoesNotPanicAcrossVerbosityCombinations(t *testing.T) {
	for _, tc := range []struct{ quiet, verbose bool }{
		{false, false},
		{true, false},
		{false, true},
	} {
		log := New(tc.quiet, tc.verbose)
		log.Infow("test message", "k", "v")
	}
}

func TestNoopDiscardsSilently(t *testing.T) {
	log := Noop()
	log.Debugw("ignored")
}
