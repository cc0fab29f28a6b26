package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/PassHash/internal/exchange"
	"github.com/atinyakov/PassHash/internal/models"
)

// StoreKey is the key holding the serialized configuration list.
const StoreKey = "passwordHashConfigs"

var (
	// ErrEmptyName is returned by Save when the configuration has no name.
	ErrEmptyName = errors.New("config name must not be empty")
	// ErrUnknownAlgorithm is returned by Save for an unsupported algorithm.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
	// ErrUnknownMethod is returned by Save for an unsupported visualization method.
	ErrUnknownMethod = errors.New("unknown visualization method")
	// ErrNotFound is returned when no configuration has the requested id.
	ErrNotFound = errors.New("config not found")
)

// KeyValueStore defines the persistence operations needed by ConfigService.
type KeyValueStore interface {
	// Get returns the value stored under key; the boolean is false when
	// nothing is stored.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// ConfigService manages the saved configuration list. Every mutation reads
// the whole list, changes it in memory and writes it back.
type ConfigService struct {
	repo KeyValueStore
	now  func() time.Time
	log  *zap.Logger
	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// ConfigOption customizes a ConfigService.
type ConfigOption func(*ConfigService)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) ConfigOption {
	return func(s *ConfigService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(log *zap.Logger) ConfigOption {
	return func(s *ConfigService) {
		if log != nil {
			s.log = log
		}
	}
}

// NewConfigService constructs a ConfigService on top of repo.
func NewConfigService(repo KeyValueStore, opts ...ConfigOption) *ConfigService {
	s := &ConfigService{
		repo: repo,
		now:  time.Now,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a new configuration and returns it with its assigned id and
// timestamp. Salts are not part of NewConfig and are never stored.
func (s *ConfigService) Save(ctx context.Context, nc models.NewConfig) (models.SavedConfig, error) {
	if strings.TrimSpace(nc.Name) == "" {
		return models.SavedConfig{}, ErrEmptyName
	}
	if nc.Algorithm == "" {
		nc.Algorithm = models.DefaultAlgorithm
	} else {
		alg, ok := models.ParseHashAlgorithm(string(nc.Algorithm))
		if !ok {
			return models.SavedConfig{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, nc.Algorithm)
		}
		nc.Algorithm = alg
	}
	if nc.VisualizationMethod == "" {
		nc.VisualizationMethod = models.Keypad
	}
	if !nc.VisualizationMethod.Valid() {
		return models.SavedConfig{}, fmt.Errorf("%w: %q", ErrUnknownMethod, nc.VisualizationMethod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return models.SavedConfig{}, err
	}

	now := s.now()
	cfg := models.SavedConfig{
		ID:                  nextID(configs, now),
		Name:                nc.Name,
		Text:                nc.Text,
		Algorithm:           nc.Algorithm,
		VisualizationMethod: nc.VisualizationMethod,
		Timestamp:           now.UnixMilli(),
	}

	if err := s.persist(ctx, append(configs, cfg)); err != nil {
		return models.SavedConfig{}, err
	}
	s.log.Info("config saved", zap.String("id", cfg.ID))
	return cfg, nil
}

// List returns all configurations in insertion order.
func (s *ConfigService) List(ctx context.Context) ([]models.SavedConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Get returns the configuration with the given id.
func (s *ConfigService) Get(ctx context.Context, id string) (models.SavedConfig, error) {
	configs, err := s.List(ctx)
	if err != nil {
		return models.SavedConfig{}, err
	}
	for _, c := range configs {
		if c.ID == id {
			return c, nil
		}
	}
	return models.SavedConfig{}, ErrNotFound
}

// Delete removes the configuration with the given id. Deleting an unknown
// id is not an error; the boolean reports whether anything was removed.
func (s *ConfigService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.SavedConfig, 0, len(configs))
	for _, c := range configs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(configs) {
		return false, nil
	}
	if err := s.persist(ctx, kept); err != nil {
		return false, err
	}
	s.log.Info("config deleted", zap.String("id", id))
	return true, nil
}

// ExportAll returns the whole collection as a JSON array.
func (s *ConfigService) ExportAll(ctx context.Context) (string, error) {
	configs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	b, err := exchange.Encode(configs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportAll validates a JSON array of configurations and merges it into the
// store by id. It returns the number of added configurations. On any
// validation error the store is left untouched.
func (s *ConfigService) ImportAll(ctx context.Context, data string) (int, error) {
	incoming, err := exchange.Decode([]byte(data))
	if err != nil {
		s.log.Warn("import rejected", zap.Error(err))
		return 0, err
	}
	return s.merge(ctx, incoming)
}

// ExportCompressed returns the collection as a compressed, Base64 encoded
// payload that fits into a QR code.
func (s *ConfigService) ExportCompressed(ctx context.Context) (string, error) {
	configs, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	return exchange.Compress(configs)
}

// ImportCompressed decodes a payload produced by ExportCompressed and
// merges it like ImportAll.
func (s *ConfigService) ImportCompressed(ctx context.Context, payload string) (int, error) {
	incoming, err := exchange.Decompress(payload)
	if err != nil {
		s.log.Warn("compressed import rejected", zap.Error(err))
		return 0, err
	}
	return s.merge(ctx, incoming)
}

func (s *ConfigService) merge(ctx context.Context, incoming []models.SavedConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	merged, added := exchange.Merge(configs, incoming)
	if added == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, merged); err != nil {
		return 0, err
	}
	s.log.Info("configs imported", zap.Int("received", len(incoming)), zap.Int("added", added))
	return added, nil
}

// load reads the collection. A stored value that cannot be decoded is
// treated as an empty collection.
func (s *ConfigService) load(ctx context.Context) ([]models.SavedConfig, error) {
	raw, ok, err := s.repo.Get(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("read configs: %w", err)
	}
	if !ok || raw == "" {
		return []models.SavedConfig{}, nil
	}

	var configs []models.SavedConfig
	if err := json.Unmarshal([]byte(raw), &configs); err != nil {
		s.log.Warn("stored configs are corrupt, starting empty", zap.Error(err))
		return []models.SavedConfig{}, nil
	}
	if configs == nil {
		configs = []models.SavedConfig{}
	}
	return configs, nil
}

func (s *ConfigService) persist(ctx context.Context, configs []models.SavedConfig) error {
	b, err := exchange.Encode(configs)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, StoreKey, string(b)); err != nil {
		return fmt.Errorf("write configs: %w", err)
	}
	return nil
}

// nextID derives an id from the creation time in milliseconds, moving
// forward one millisecond at a time until it is unique within configs.
func nextID(configs []models.SavedConfig, now time.Time) string {
	taken := make(map[string]struct{}, len(configs))
	for _, c := range configs {
		taken[c.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}
