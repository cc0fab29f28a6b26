// Package scanner runs cancellable QR scan sessions. A session delivers at
// most one decoded payload, so a code that stays in front of the camera is
// imported once.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrPermissionDenied means the user refused access to the camera.
	ErrPermissionDenied = errors.New("scanner: camera permission denied")
	// ErrNoDevice means no camera is available.
	ErrNoDevice = errors.New("scanner: no camera found")
	// ErrUnsupported means the platform cannot scan QR codes.
	ErrUnsupported = errors.New("scanner: scanning not supported")
	// ErrStopped is returned by Scan when Stop ended the session.
	ErrStopped = errors.New("scanner: stopped")
	// ErrBusy is returned when a scan is already running.
	ErrBusy = errors.New("scanner: scan already in progress")
)

// Source yields decoded QR payloads, for example from camera frames or
// from typed input.
type Source interface {
	// Next blocks until a payload is decoded or ctx is done.
	Next(ctx context.Context) (string, error)
	// Close releases the underlying device.
	Close() error
}

// Describe turns a scan error into a message for the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Camera access was denied. Allow camera access or paste the code manually."
	case errors.Is(err, ErrNoDevice):
		return "No camera was found on this device. Paste the code manually."
	case errors.Is(err, ErrUnsupported):
		return "QR scanning is not supported here. Paste the code manually."
	case errors.Is(err, ErrStopped), errors.Is(err, context.Canceled):
		return "Scanning stopped."
	default:
		return "Scanning failed: " + err.Error()
	}
}

// Scanner runs one scan at a time.
type Scanner struct {
	log *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	release func()
	stopped bool
}

// New returns a Scanner. A nil logger disables logging.
func New(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log}
}

// Scan reads payloads from src until a non-blank one arrives and passes it
// to handle exactly once. src is closed when Scan returns, whatever the
// outcome.
func (s *Scanner) Scan(ctx context.Context, src Source, handle func(payload string) error) error {
	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := src.Close(); err != nil {
				s.log.Warn("failed to release scan source", zap.Error(err))
			}
		})
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		cancel()
		return ErrBusy
	}
	s.cancel, s.release, s.stopped = cancel, release, false
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel, s.release = nil, nil
		s.mu.Unlock()
		cancel()
		release()
	}()

	for {
		payload, err := src.Next(ctx)
		if err != nil {
			if s.wasStopped() {
				return ErrStopped
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("scan: %w", err)
		}
		if strings.TrimSpace(payload) == "" {
			continue
		}

		// release the device before handing over
		release()
		s.log.Info("qr code detected", zap.Int("bytes", len(payload)))
		return handle(payload)
	}
}

// Stop ends a running scan and releases its source. It is safe to call at
// any time, including when no scan is running.
func (s *Scanner) Stop() {
	s.mu.Lock()
	cancel, release := s.cancel, s.release
	if cancel != nil {
		s.stopped = true
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		release()
	}
}

func (s *Scanner) wasStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
