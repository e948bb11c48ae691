package stream

import "strings"

// sentenceAccumulator watches the token stream for sentence boundaries and
// decides when enough completed material exists to hand a span to audio
// synthesis. The threshold starts at one sentence and grows by one after each
// dispatch, so the first clip arrives fast while later, longer clips keep the
// synthesis request volume down.
type sentenceAccumulator struct {
	dispatch func(span string)

	current   strings.Builder
	completed []string
	threshold int
}

func newSentenceAccumulator(dispatch func(span string)) *sentenceAccumulator {
	return &sentenceAccumulator{dispatch: dispatch, threshold: 1}
}

// onFragment appends fragment to the sentence in progress and commits it when
// the fragment is sentence-terminal.
func (a *sentenceAccumulator) onFragment(fragment string) {
	a.current.WriteString(fragment)
	if endsSentence(fragment) {
		a.completed = append(a.completed, a.current.String())
		a.current.Reset()
	}
}

// maybeDispatch hands the completed sentences to synthesis once their count
// reaches the current threshold, then escalates the threshold.
func (a *sentenceAccumulator) maybeDispatch() {
	if len(a.completed) < a.threshold {
		return
	}
	span := strings.Join(a.completed, "")
	a.completed = a.completed[:0]
	a.threshold++
	a.dispatch(span)
}

// flushRemainder dispatches any uncommitted text at stream end, threshold
// notwithstanding.
func (a *sentenceAccumulator) flushRemainder() {
	span := strings.Join(a.completed, "") + a.current.String()
	a.completed = a.completed[:0]
	a.current.Reset()
	if strings.TrimSpace(span) == "" {
		return
	}
	a.dispatch(span)
}

// endsSentence reports whether fragment closes a sentence. Trailing quotes
// and whitespace after the terminal mark still count.
func endsSentence(fragment string) bool {
	trimmed := strings.TrimRight(fragment, " \t\n\r\"')")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}
