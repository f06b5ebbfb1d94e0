package formats

import "sync/atomic"

// Progress tracks how far a parse has advanced. There is exactly one writer
// (the parsing goroutine) and one reader (the render loop), so two atomic
// counters are all the synchronization required.
type Progress struct {
	lines atomic.Int64
	total atomic.Int64
	done  atomic.Bool
}

// NewProgress returns a Progress ready to hand to ParseOFF.
func NewProgress() *Progress {
	return &Progress{}
}

// Fraction returns the completed fraction in 0..1. It is monotonically
// non-decreasing and returns exactly 1 only once the parse has finished.
func (p *Progress) Fraction() float32 {
	if p.done.Load() {
		return 1
	}
	total := p.total.Load()
	if total <= 0 {
		return 0
	}
	f := float32(p.lines.Load()) / float32(total)
	// Completion is signalled by the done flag, never by line counting.
	if f > 0.999 {
		f = 0.999
	}
	return f
}

// Done reports whether the parse has returned.
func (p *Progress) Done() bool {
	return p.done.Load()
}

func (p *Progress) setTotal(n int64) {
	p.total.Store(n)
}

func (p *Progress) advance(n int64) {
	p.lines.Add(n)
}

func (p *Progress) finish() {
	p.done.Store(true)
}
