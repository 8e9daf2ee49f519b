package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// TrackingQR encodes the public tracking page of an order.
type TrackingQR struct {
	BaseURL string
}

func (g TrackingQR) URL(orderID uuid.UUID) string {
	return fmt.Sprintf("%s/orders/%s", g.BaseURL, orderID)
}

func (g TrackingQR) Generate(orderID uuid.UUID) ([]byte, error) {
	return qrcode.Encode(g.URL(orderID), qrcode.Medium, 256)
}
