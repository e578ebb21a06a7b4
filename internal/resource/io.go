package resource

import (
	"context"
	"io"
)

type limitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewRateLimitedWriter charges every write to rc's IO budget before
// passing it on.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) io.Writer {
	if rc == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, w: w, rc: rc}
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if err := l.rc.AcquireIO(l.ctx, len(p)); err != nil {
		return 0, err
	}
	return l.w.Write(p)
}

type limitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader charges the bytes each read returns to rc's IO
// budget.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	if rc == nil {
		return r
	}
	return &limitedReader{ctx: ctx, r: r, rc: rc}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		if werr := l.rc.AcquireIO(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
