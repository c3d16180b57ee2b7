package gemini

// ReplyKind discriminates the two shapes a generate call can produce.
type ReplyKind int

const (
	// ReplyComplete carries the full reply text in one piece.
	ReplyComplete ReplyKind = iota
	// ReplyStreaming carries the reply as a sequence of text deltas.
	ReplyStreaming
)

// Delta is one streamed increment of reply text. A non-nil Err terminates
// the stream; no further deltas follow it.
type Delta struct {
	Content string
	Err     error
}

// Reply is the outcome of a generate call. Text is set for ReplyComplete,
// Deltas for ReplyStreaming.
type Reply struct {
	Kind   ReplyKind
	Text   string
	Deltas <-chan Delta
}
