package provider

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/xrp-genie/internal/model"
)

const qrSize = 256

// QRCode renders the deep link of a signing request as a base64 PNG
func QRCode(req *model.SigningRequest) (string, error) {
	qr, err := newQR(req)
	if err != nil {
		return "", err
	}

	png, err := qr.PNG(qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}

// RenderQR renders the deep link of a signing request for a terminal
func RenderQR(req *model.SigningRequest) (string, error) {
	qr, err := newQR(req)
	if err != nil {
		return "", err
	}
	return qr.ToString(false), nil
}

func newQR(req *model.SigningRequest) (*qrcode.QRCode, error) {
	if req == nil || req.DeepLink == "" {
		return nil, fmt.Errorf("signing request has no deep link")
	}
	qr, err := qrcode.New(req.DeepLink, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	return qr, nil
}
