// Package exchange serializes saved configurations for export, import and
// device-to-device transfer through QR codes.
package exchange

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/klauspost/compress/zlib"

	"github.com/atinyakov/PassHash/internal/models"
)

var (
	// ErrInvalidPayload is returned when imported data cannot be decoded or
	// does not match the configuration schema.
	ErrInvalidPayload = errors.New("exchange: invalid payload")

	// ErrPayloadTooLarge is returned when a compressed payload does not fit
	// into a single QR code.
	ErrPayloadTooLarge = errors.New("exchange: payload exceeds QR capacity")
)

// MaxQRPayload is the byte-mode capacity of a version 40 QR code at medium
// error correction.
const MaxQRPayload = 2331

// maxSafeInteger is the largest integer a JSON number carries exactly.
const maxSafeInteger = 1 << 53

// maxInflated bounds decompression of untrusted payloads.
const maxInflated = 4 << 20

// Encode serializes configs as a JSON array. A nil slice encodes as [].
func Encode(configs []models.SavedConfig) ([]byte, error) {
	if configs == nil {
		configs = []models.SavedConfig{}
	}
	b, err := json.Marshal(configs)
	if err != nil {
		return nil, fmt.Errorf("encode configs: %w", err)
	}
	return b, nil
}

// Decode parses and validates a JSON array of configurations. One malformed
// element rejects the whole batch.
func Decode(data []byte) ([]models.SavedConfig, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if items == nil {
		// literal null
		return nil, fmt.Errorf("%w: not an array", ErrInvalidPayload)
	}

	out := make([]models.SavedConfig, 0, len(items))
	for i, raw := range items {
		cfg, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidPayload, i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

func decodeItem(raw json.RawMessage) (models.SavedConfig, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.SavedConfig{}, errors.New("not an object")
	}

	str := func(key string) (string, error) {
		v, ok := fields[key].(string)
		if !ok {
			return "", fmt.Errorf("field %q must be a string", key)
		}
		return v, nil
	}

	var (
		cfg models.SavedConfig
		err error
		s   string
	)
	if cfg.ID, err = str("id"); err != nil {
		return cfg, err
	}
	if cfg.Name, err = str("name"); err != nil {
		return cfg, err
	}
	if cfg.Text, err = str("text"); err != nil {
		return cfg, err
	}
	if s, err = str("algorithm"); err != nil {
		return cfg, err
	}
	cfg.Algorithm = models.HashAlgorithm(s)
	if s, err = str("visualizationMethod"); err != nil {
		return cfg, err
	}
	cfg.VisualizationMethod = models.VisualizationMethod(s)

	ts, ok := fields["timestamp"].(float64)
	if !ok {
		return cfg, errors.New(`field "timestamp" must be a number`)
	}
	if ts != math.Trunc(ts) || math.Abs(ts) > maxSafeInteger {
		return cfg, errors.New(`field "timestamp" must be an integer within ±2^53`)
	}
	cfg.Timestamp = int64(ts)
	return cfg, nil
}

// Merge appends the incoming configurations whose id is not yet present.
// Existing entries always win; within incoming the first occurrence of an
// id wins. It returns the merged slice and the number of added entries.
func Merge(existing, incoming []models.SavedConfig) ([]models.SavedConfig, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]models.SavedConfig, 0, len(existing)+len(incoming))
	for _, c := range existing {
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
	}

	added := 0
	for _, c := range incoming {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		merged = append(merged, c)
		added++
	}
	return merged, added
}

// Compress serializes configs as JSON, deflates them inside a zlib stream
// and returns the standard Base64 text suitable for a QR code.
func Compress(configs []models.SavedConfig) (string, error) {
	data, err := Encode(configs)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}

	payload := base64.StdEncoding.EncodeToString(buf.Bytes())
	if len(payload) > MaxQRPayload {
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	return payload, nil
}

// Decompress reverses Compress and validates the result like Decode.
// Surrounding whitespace, as left by manual pasting, is ignored.
func Decompress(payload string) ([]models.SavedConfig, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidPayload, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrInvalidPayload, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrInvalidPayload, err)
	}
	if len(data) > maxInflated {
		return nil, fmt.Errorf("%w: inflated payload too large", ErrInvalidPayload)
	}
	return Decode(data)
}

// ExportFileName returns the download name of a JSON export made at t.
func ExportFileName(t time.Time) string {
	return "password-hash-configs-" + t.UTC().Format("2006-01-02") + ".json"
}
