package diagnosis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidImage marks client-side image problems (400, not 500).
var ErrInvalidImage = errors.New("invalid image")

// The vision endpoint accepts only these.
var supportedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Image is a decoded upload with its sniffed media type.
type Image struct {
	MediaType string
	Data      []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL is the inline form stored on a scan row.
func (i Image) DataURL() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}

// DecodeImage accepts raw base64 or a data: URL. The declared type of a data
// URL is ignored; the bytes decide.
func DecodeImage(encoded string) (Image, error) {
	s := strings.TrimSpace(encoded)
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return Image{}, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		s = s[comma+1:]
	}
	if s == "" {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(s); err != nil {
			return Image{}, fmt.Errorf("%w: not base64", ErrInvalidImage)
		}
	}

	mediaType := strings.SplitN(mimetype.Detect(data).String(), ";", 2)[0]
	if !supportedMediaTypes[mediaType] {
		return Image{}, fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, mediaType)
	}
	return Image{MediaType: mediaType, Data: data}, nil
}
