package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/iftarlantern/internal/errors"
)

// QR image size bounds in pixels
const (
	MinQRSize     = 128
	MaxQRSize     = 1024
	DefaultQRSize = 256
)

// ComboText formats the last combo for sharing, one category per line.
// Categories without dishes are left out.
func (s *PlannerService) ComboText(ctx context.Context) (string, error) {
	s.mu.Lock()
	combo := s.doc.LastCombo.Clone()
	s.mu.Unlock()

	if combo == nil || combo.IsEmpty() {
		return "", ErrNoCombo
	}

	lines := []string{AppName + " pick:"}
	for _, cat := range s.registry.All() {
		dishes := combo[cat.ID]
		if len(dishes) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", cat.Label, strings.Join(dishes, ", ")))
	}
	return strings.Join(lines, "\n"), nil
}

// ComboQR renders ComboText as a PNG QR code of the given size
func (s *PlannerService) ComboQR(ctx context.Context, size int) ([]byte, error) {
	if size < MinQRSize || size > MaxQRSize {
		return nil, errors.Validationf("size must be between %d and %d", MinQRSize, MaxQRSize)
	}

	text, err := s.ComboText(ctx)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to render QR code")
	}
	return png, nil
}
