package qr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const tokenBytes = 24

// NewToken returns a fresh table token: 24 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("qr.NewToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type Generator struct {
	BaseURL string
	Size    int
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{BaseURL: strings.TrimRight(baseURL, "/"), Size: 512}
}

// TableURL is the link a guest opens by scanning the table code.
func (g *Generator) TableURL(venueID uuid.UUID, token string) string {
	return fmt.Sprintf("%s/t/%s/table/%s", g.BaseURL, venueID, token)
}

// PNG renders the table link as a QR code image.
func (g *Generator) PNG(venueID uuid.UUID, token string) ([]byte, error) {
	return qrcode.Encode(g.TableURL(venueID, token), qrcode.Medium, g.Size)
}
