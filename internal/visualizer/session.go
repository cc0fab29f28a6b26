// Package visualizer models the gesture widgets that produce secondary
// salts and the session that receives them.
package visualizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/PassHash/internal/models"
)

var (
	// ErrEmptySalt is returned when a widget applies an empty salt.
	ErrEmptySalt = errors.New("visualizer: salt must not be empty")
	// ErrUnknownMethod is returned for an unsupported visualization method.
	ErrUnknownMethod = errors.New("visualizer: unknown method")
)

// Widget is a gesture model that can turn its current input into a salt.
type Widget interface {
	Method() models.VisualizationMethod
	Salt() string
	Reset()
}

// New returns an empty widget for the method.
func New(method models.VisualizationMethod) (Widget, error) {
	switch method {
	case models.Keypad:
		return &Keypad{}, nil
	case models.AndroidPattern:
		return &Pattern{}, nil
	case models.BankVault:
		return &Vault{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// Session holds the secondary salt currently applied by a widget. The
// salt is opaque text; the session never inspects it.
type Session struct {
	mu     sync.Mutex
	salt   string
	method models.VisualizationMethod
}

// ApplySalt sets the secondary salt produced by a widget using method.
func (s *Session) ApplySalt(salt string, method models.VisualizationMethod) error {
	if salt == "" {
		return ErrEmptySalt
	}
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salt = salt
	s.method = method
	return nil
}

// Apply applies the current salt of w.
func (s *Session) Apply(w Widget) error {
	return s.ApplySalt(w.Salt(), w.Method())
}

// SecondarySalt returns the applied salt, or "" when none is applied.
func (s *Session) SecondarySalt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.salt
}

// Method returns the method of the applied salt, or Keypad when none is
// applied.
func (s *Session) Method() models.VisualizationMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.method == "" {
		return models.Keypad
	}
	return s.method
}

// Clear drops the applied salt.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salt = ""
	s.method = ""
}
