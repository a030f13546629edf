// Package progress reports byte-level transfer progress.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Reader counts the bytes read through it and redraws a progress line on a
// terminal writer at most once per interval.
type Reader struct {
	r     io.Reader
	out   io.Writer
	total uint64
	read  atomic.Uint64

	interval time.Duration
	last     time.Time
}

// NewReader wraps r. A nil out disables drawing but still counts bytes.
func NewReader(r io.Reader, total uint64, out io.Writer) *Reader {
	return &Reader{r: r, out: out, total: total, interval: 100 * time.Millisecond}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read.Add(uint64(n))
		if p.out != nil && time.Since(p.last) >= p.interval {
			p.last = time.Now()
			p.draw()
		}
	}
	return n, err
}

// N returns the number of bytes read so far.
func (p *Reader) N() uint64 { return p.read.Load() }

func (p *Reader) draw() {
	fmt.Fprintf(p.out, "\r  %s / %s", humanize.IBytes(p.read.Load()), humanize.IBytes(p.total))
}

// Finish clears the progress line.
func (p *Reader) Finish() {
	if p.out != nil && !p.last.IsZero() {
		fmt.Fprint(p.out, "\r\033[K")
	}
}

// Duration formats d for humans, e.g. "1.2s" or "3m4s".
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// Bytes formats n as a human readable size.
func Bytes(n uint64) string { return humanize.IBytes(n) }
