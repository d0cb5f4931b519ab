package enums

import (
	"fmt"
	"strings"
)

// QRPosition is where the QR code is overlaid on a template image.
type QRPosition string

const (
	QRPositionCenter QRPosition = "center"
	QRPositionTop    QRPosition = "top"
)

var validQRPositions = []QRPosition{
	QRPositionCenter,
	QRPositionTop,
}

func (q QRPosition) String() string {
	return string(q)
}

func (q QRPosition) IsValid() bool {
	for _, candidate := range validQRPositions {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQRPosition accepts the british "centre" spelling used by older templates.
func ParseQRPosition(value string) (QRPosition, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "centre" {
		normalized = string(QRPositionCenter)
	}
	for _, candidate := range validQRPositions {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid qr position %q", value)
}
