package env

import "trictrac/game"

// History is a fixed-capacity ring buffer of recent state fingerprints.
type History struct {
	buf  []game.StateHash
	next int
	size int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]game.StateHash, capacity)}
}

// Push records h, evicting the oldest entry when full.
func (h *History) Push(hash game.StateHash) {
	h.buf[h.next] = hash
	h.next = (h.next + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Count returns how often hash occurs among the recorded entries.
func (h *History) Count(hash game.StateHash) int {
	n := 0
	for i := 0; i < h.size; i++ {
		if h.buf[i] == hash {
			n++
		}
	}
	return n
}

func (h *History) Len() int { return h.size }

func (h *History) Clear() {
	h.next = 0
	h.size = 0
}

// Entries returns the recorded fingerprints, oldest first.
func (h *History) Entries() []game.StateHash {
	out := make([]game.StateHash, 0, h.size)
	start := (h.next - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(start+i)%len(h.buf)])
	}
	return out
}
