package state

import (
	"log/slog"
	"strconv"
)

// StreamWorker applies control tags from one streaming assistant
// response to the store, each exactly once. The response arrives as a
// growing string in arbitrary-sized increments; a tag may straddle any
// chunk boundary, so every scan re-examines the full accumulated
// buffer from the last position that could still hold an incomplete
// tag. The applied set, keyed by literal tag text, guarantees that a
// tag visible in many successive scans takes effect only on the first.
//
// A worker lives for exactly one assistant message and is discarded
// when the message finishes streaming. If the stream dies early,
// whatever was applied stays applied; there is no rollback.
type StreamWorker struct {
	store   *Store
	logger  *slog.Logger
	applied map[string]struct{}
	cursor  int
}

// NewStreamWorker creates a worker bound to one in-flight message.
func NewStreamWorker(store *Store, logger *slog.Logger) *StreamWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamWorker{
		store:   store,
		logger:  logger,
		applied: make(map[string]struct{}),
	}
}

// Scan examines the accumulated response content and applies every
// newly-completed tag that has not been applied yet. Call it after
// each appended chunk with the full buffer so far.
func (w *StreamWorker) Scan(content string) {
	if w.cursor > len(content) {
		// buffer shrank; a new message was swapped in without a new
		// worker, start over
		w.cursor = 0
	}

	for _, tag := range FindTags(content[w.cursor:]) {
		if _, done := w.applied[tag.Text]; done {
			continue
		}
		w.apply(tag)
		w.applied[tag.Text] = struct{}{}
	}

	// Advance the cursor past everything that can no longer begin an
	// unfinished tag: anything before the last unmatched '[' is final.
	w.cursor += lastOpenBracket(content[w.cursor:])
}

// AppliedCount reports how many distinct tags have been applied.
func (w *StreamWorker) AppliedCount() int {
	return len(w.applied)
}

func (w *StreamWorker) apply(tag Tag) {
	switch tag.Kind {
	case TagRoll:
		w.store.SetPendingRoll(tag.Values[0], tag.Values[1])
	case TagHP:
		if n, err := strconv.Atoi(tag.Values[0]); err == nil {
			w.store.UpdateHP(n)
		}
	case TagXP:
		if n, err := strconv.Atoi(tag.Values[0]); err == nil {
			w.store.AddXP(n)
		}
	case TagGold:
		if n, err := strconv.Atoi(tag.Values[0]); err == nil {
			w.store.UpdateGold(n)
		}
	case TagItemAdd:
		w.store.AddItem(tag.Values[0])
	case TagItemRemove:
		w.store.RemoveItem(tag.Values[0])
	default:
		w.logger.Warn("Unknown tag kind", "kind", tag.Kind, "text", tag.Text)
		return
	}
	w.logger.Debug("Applied tag", "kind", tag.Kind, "text", tag.Text)
}

// lastOpenBracket returns the index of the last '[' that is not yet
// closed by a ']' -- the earliest position a tag still under
// construction could start at. If every bracket is closed, it returns
// len(s).
func lastOpenBracket(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ']':
			return len(s)
		case '[':
			return i
		}
	}
	return len(s)
}
