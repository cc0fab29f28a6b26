package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// LineSource is the manual fallback: every line typed or pasted into r is
// treated as a decoded payload.
//
// A line is only read from r while Next is waiting for one, so r can be
// shared with other readers between calls as long as Buffered reports
// zero. Next is not safe for concurrent use.
type LineSource struct {
	req   chan struct{}
	lines chan lineResult
	done  chan struct{}
	once  sync.Once

	// pending is set while a requested line has not been received.
	pending bool

	mu       sync.Mutex
	err      error
	buffered int
}

// NewLineSource returns a LineSource reading from r.
func NewLineSource(r io.Reader) *LineSource {
	ls := &LineSource{
		req:   make(chan struct{}),
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
	go ls.read(bufio.NewReader(r))
	return ls
}

func (ls *LineSource) read(br *bufio.Reader) {
	for {
		select {
		case <-ls.req:
		case <-ls.done:
			return
		}

		var res lineResult
		line, err := br.ReadString('\n')
		switch {
		case line != "":
			line = strings.TrimSuffix(line, "\n")
			res.line = strings.TrimSuffix(line, "\r")
		case err != nil:
			res.err = err
		}

		ls.mu.Lock()
		ls.buffered = br.Buffered()
		if res.err != nil {
			ls.err = res.err
		}
		ls.mu.Unlock()

		select {
		case ls.lines <- res:
		case <-ls.done:
			return
		}
		if res.err != nil {
			return
		}
	}
}

// Buffered returns the number of bytes already read from r but not yet
// returned as lines. Other readers of r would miss them.
func (ls *LineSource) Buffered() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.buffered
}

// Next returns the next line. If ctx ends first, the line being read is
// kept for the following call.
func (ls *LineSource) Next(ctx context.Context) (string, error) {
	if !ls.pending {
		ls.mu.Lock()
		err := ls.err
		ls.mu.Unlock()
		if err != nil {
			return "", err
		}

		select {
		case ls.req <- struct{}{}:
			ls.pending = true
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ls.done:
			return "", io.ErrClosedPipe
		}
	}

	select {
	case res := <-ls.lines:
		ls.pending = false
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-ls.done:
		return "", io.ErrClosedPipe
	}
}

// Close stops delivering lines. It does not close the underlying reader.
func (ls *LineSource) Close() error {
	ls.once.Do(func() { close(ls.done) })
	return nil
}
