package theme

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Background is a backend-rendered background image
type Background struct {
	URI    string // data:<mime>;base64,<payload>, empty when no image is set
	Format string // image format reported by the decoder
	Width  int
	Height int
}

// Empty reports whether no background image is set
func (b Background) Empty() bool {
	return b.URI == ""
}

// ParseBackground validates a data URI and reads its image header
func ParseBackground(uri string) (Background, error) {
	if uri == "" {
		return Background{}, nil
	}

	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Background{}, fmt.Errorf("background image: not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Background{}, fmt.Errorf("background image: missing payload")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return Background{}, fmt.Errorf("background image: unsupported encoding %q", meta)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Background{}, fmt.Errorf("background image: decoding base64: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Background{}, fmt.Errorf("background image: %w", err)
	}

	return Background{URI: uri, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// DataURI encodes raw image bytes with the given MIME type
func DataURI(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
