package qrcode

import (
	"strings"

	"marketmap/config"
	"marketmap/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const maxContentLength = 2048

var errEmptyContent = errors.New("qr content is empty")

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// New is the fx constructor backed by the whatsapp section.
func New(cfg *config.Config) service.QRCodeService {
	return NewQRCodeService(cfg.WhatsApp.QRSize, cfg.WhatsApp.ErrorCorrectionLevel)
}

// Encode renders content (typically a wa.me deep link) as a PNG.
func (s *qrcodeService) Encode(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errEmptyContent
	}
	if len(content) > maxContentLength {
		return nil, errors.Errorf("qr content too long: %d bytes", len(content))
	}

	qrCode, err := qrcode.New(content, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "create qr code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "generate png")
	}

	return pngBytes, nil
}
