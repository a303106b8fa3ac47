package runner

import (
	"errors"
	"io"
	"time"
)

// errCancelled aborts a transfer loop from inside a reader.
var errCancelled = errors.New("export cancelled")

// Throttled wraps a sink so transfer loops can call it per chunk without
// flooding subscribers: updates are coalesced to one per interval. The final
// update (sent == total) always goes through so completion is never dropped.
func Throttled(sink Sink, interval time.Duration) Sink {
	if sink == nil {
		return func(int64, int64) {}
	}
	if interval <= 0 {
		return sink
	}
	var last time.Time
	return func(sent, total int64) {
		now := time.Now()
		if sent < total && !last.IsZero() && now.Sub(last) < interval {
			return
		}
		last = now
		sink(sent, total)
	}
}

// progressReader reports bytes consumed from an upload source and observes
// the cancel flag, so transports that pull from an io.Reader (plain FTP)
// still stream progress and stop promptly on cancellation.
type progressReader struct {
	src    io.Reader
	total  int64
	sent   int64
	cancel *CancelFlag
	sink   Sink
}

func (r *progressReader) Read(p []byte) (int, error) {
	if r.cancel.Cancelled() {
		return 0, errCancelled
	}
	n, err := r.src.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.sink(r.sent, r.total)
	}
	return n, err
}
