package uploader

import (
	"io"
	"math"
)

// progressReader reports how much of a body of known size has been read.
// Percentages only move forward and each value is reported once.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	last  int
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.sent += int64(n)
		pct := int(math.Round(float64(p.sent) / float64(p.total) * 100))
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
