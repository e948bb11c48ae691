package stream

import (
	"reflect"
	"testing"
)

func TestDispatchAtEscalatingThreshold(t *testing.T) {
	var dispatched []string
	a := newSentenceAccumulator(func(span string) {
		dispatched = append(dispatched, span)
	})

	// First sentence dispatches alone at threshold 1.
	a.onFragment("One.")
	a.maybeDispatch()
	if !reflect.DeepEqual(dispatched, []string{"One."}) {
		t.Fatalf("after first sentence: %v", dispatched)
	}

	// Threshold is now 2: a single completed sentence is not enough.
	a.onFragment("Two.")
	a.maybeDispatch()
	if len(dispatched) != 1 {
		t.Fatalf("dispatched below threshold: %v", dispatched)
	}

	a.onFragment("Three.")
	a.maybeDispatch()
	if !reflect.DeepEqual(dispatched, []string{"One.", "Two.Three."}) {
		t.Fatalf("after third sentence: %v", dispatched)
	}
}

func TestFragmentsAccumulateIntoSentences(t *testing.T) {
	var dispatched []string
	a := newSentenceAccumulator(func(span string) {
		dispatched = append(dispatched, span)
	})

	for _, frag := range []string{"Hi", " there", "."} {
		a.onFragment(frag)
		a.maybeDispatch()
	}
	if !reflect.DeepEqual(dispatched, []string{"Hi there."}) {
		t.Fatalf("dispatched = %v", dispatched)
	}
}

func TestFlushRemainderDispatchesUnterminatedText(t *testing.T) {
	var dispatched []string
	a := newSentenceAccumulator(func(span string) {
		dispatched = append(dispatched, span)
	})

	a.onFragment("One.")
	a.maybeDispatch()

	// One completed sentence below threshold plus a trailing fragment.
	a.onFragment("Two.")
	a.onFragment("and then")
	a.flushRemainder()
	if !reflect.DeepEqual(dispatched, []string{"One.", "Two.and then"}) {
		t.Fatalf("dispatched = %v", dispatched)
	}
}

func TestFlushRemainderSkipsWhitespace(t *testing.T) {
	calls := 0
	a := newSentenceAccumulator(func(string) { calls++ })

	a.onFragment("  \n")
	a.flushRemainder()
	if calls != 0 {
		t.Fatalf("whitespace remainder dispatched %d times", calls)
	}
}

func TestEndsSentence(t *testing.T) {
	cases := []struct {
		fragment string
		want     bool
	}{
		{"word", false},
		{"end.", true},
		{"end!", true},
		{"end?", true},
		{"end.\"", true},
		{"end. ", true},
		{"", false},
		{"   ", false},
		{"no terminal,", false},
	}
	for _, tc := range cases {
		if got := endsSentence(tc.fragment); got != tc.want {
			t.Errorf("endsSentence(%q) = %v, want %v", tc.fragment, got, tc.want)
		}
	}
}
