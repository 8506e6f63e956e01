package modules

import "time"

const noticeTTL = 4 * time.Second

type notice struct {
	text string
	at   time.Time
}

// noticeBoard is the transient message queue behind the skip banner:
// entries expire on their own, the presentation layer just reads Active.
type noticeBoard struct {
	now   func() time.Time
	items []notice
}

func newNoticeBoard(now func() time.Time) *noticeBoard {
	if now == nil {
		now = time.Now
	}
	return &noticeBoard{now: now}
}

func (b *noticeBoard) Push(text string) {
	b.items = append(b.items, notice{text: text, at: b.now()})
}

// Active prunes expired entries and returns the remaining messages in
// arrival order.
func (b *noticeBoard) Active() []string {
	cutoff := b.now().Add(-noticeTTL)
	kept := b.items[:0]
	var out []string
	for _, n := range b.items {
		if n.at.After(cutoff) {
			kept = append(kept, n)
			out = append(out, n.text)
		}
	}
	b.items = kept
	return out
}
