// Package chunker splits document text into fixed-size overlapping windows.
// A window is the atomic unit of embedding and retrieval: large enough to
// carry a few sentences of context, overlapping enough that a sentence cut
// at a window boundary is repeated whole in the next window.
package chunker

import "iter"

const (
	// DefaultSize is the maximum number of bytes per window.
	DefaultSize = 500

	// DefaultStep is the distance between consecutive window offsets.
	// Half of DefaultSize, giving 50% overlap.
	DefaultStep = 250
)

// Windows returns a lazy sequence of (offset, text) windows over text.
// Offsets start at 0 and advance by step up to max(len(text)-size+1, 1),
// so a document shorter than size yields exactly one window holding the
// whole text. The final window may be shorter than size. Empty text yields
// no windows. The sequence is finite and can be ranged over multiple times.
//
// size and step fall back to DefaultSize and DefaultStep when non-positive.
func Windows(text string, size, step int) iter.Seq2[int, string] {
	if size <= 0 {
		size = DefaultSize
	}
	if step <= 0 {
		step = DefaultStep
	}

	return func(yield func(int, string) bool) {
		if len(text) == 0 {
			return
		}
		limit := len(text) - size + 1
		if limit < 1 {
			limit = 1
		}
		for off := 0; off < limit; off += step {
			end := off + size
			if end > len(text) {
				end = len(text)
			}
			if !yield(off, text[off:end]) {
				return
			}
		}
	}
}

// Count returns the number of windows Windows yields for a text of the
// given length, without materialising them.
func Count(textLen, size, step int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if step <= 0 {
		step = DefaultStep
	}
	if textLen == 0 {
		return 0
	}
	limit := textLen - size + 1
	if limit < 1 {
		limit = 1
	}
	return (limit + step - 1) / step
}
