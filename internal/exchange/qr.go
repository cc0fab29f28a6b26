package exchange

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the PNG edge length in pixels.
const DefaultQRSize = 512

// RenderQR encodes payload as a PNG QR code of size x size pixels.
func RenderQR(payload string, size int) ([]byte, error) {
	q, err := newQR(payload)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// RenderQRText encodes payload as a QR code drawn with block characters,
// for display in a terminal.
func RenderQRText(payload string) (string, error) {
	q, err := newQR(payload)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

func newQR(payload string) (*qrcode.QRCode, error) {
	if len(payload) > MaxQRPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return q, nil
}
