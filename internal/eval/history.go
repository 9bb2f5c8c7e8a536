package eval

// DefaultHistoryLimit is how many steps an evaluator can step back over.
const DefaultHistoryLimit = 1000

// history keeps the snapshots needed to undo the most recent steps. With
// a positive limit it is a ring that forgets the oldest snapshot once
// full; a negative limit keeps every snapshot and zero keeps none.
type history struct {
	limit int
	buf   []snapshot
	start int
	n     int
}

func newHistory(limit int) *history { return &history{limit: limit} }

func (h *history) push(s snapshot) {
	switch {
	case h.limit == 0:
	case h.limit < 0:
		h.buf = append(h.buf, s)
		h.n++
	default:
		if h.buf == nil {
			h.buf = make([]snapshot, h.limit)
		}
		if h.n < h.limit {
			h.buf[(h.start+h.n)%h.limit] = s
			h.n++
			return
		}
		h.buf[h.start] = s
		h.start = (h.start + 1) % h.limit
	}
}

func (h *history) pop() (snapshot, bool) {
	if h.n == 0 {
		return snapshot{}, false
	}
	i := h.n - 1
	if h.limit > 0 {
		i = (h.start + h.n - 1) % h.limit
	}
	s := h.buf[i]
	h.buf[i] = snapshot{}
	h.n--
	if h.limit < 0 {
		h.buf = h.buf[:h.n]
	}
	return s, true
}

// len returns how many steps can be undone.
func (h *history) len() int { return h.n }

func (h *history) reset() {
	clear(h.buf)
	if h.limit < 0 {
		h.buf = h.buf[:0]
	}
	h.start, h.n = 0, 0
}
