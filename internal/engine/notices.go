package engine

import "time"

// Notice types shown in the activity feed.
const (
	NoticeInfo  = "info"
	NoticeBuy   = "buy"
	NoticeSell  = "sell"
	NoticeError = "error"
)

const noticeCapacity = 500

// Notice is one entry in the activity feed.
type Notice struct {
	Time    time.Time `json:"time"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
}

// noticeRing is a fixed-capacity circular buffer over the newest
// noticeCapacity entries. Writes overwrite the oldest slot in place; no
// allocation happens per notice. Callers hold the engine lock.
type noticeRing struct {
	entries [noticeCapacity]Notice
	head    int // next slot to write
	count   int
}

func (r *noticeRing) add(n Notice) {
	r.entries[r.head] = n
	r.head = (r.head + 1) % noticeCapacity
	if r.count < noticeCapacity {
		r.count++
	}
}

// list returns the buffered notices newest first.
func (r *noticeRing) list() []Notice {
	out := make([]Notice, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.entries[(r.head-1-i+noticeCapacity)%noticeCapacity]
	}
	return out
}

func (r *noticeRing) clear() {
	r.head = 0
	r.count = 0
}

// restore replays a persisted newest-first listing back into the ring.
func (r *noticeRing) restore(entries []Notice) {
	r.clear()
	for i := len(entries) - 1; i >= 0; i-- {
		r.add(entries[i])
	}
}
