package moderation_test

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/campushub/modgate/pkg/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func TestParseDataURL(t *testing.T) {
	pngData := pngBytes(t)

	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, testImage()))

	t.Run("valid png", func(t *testing.T) {
		raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
		img, err := moderation.ParseDataURL(raw, 0)
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, pngData, img.Data)
	})

	t.Run("detected format wins over declared type", func(t *testing.T) {
		raw := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(bmpBuf.Bytes())
		img, err := moderation.ParseDataURL(raw, 0)
		require.NoError(t, err)
		assert.Equal(t, "image/bmp", img.MIMEType)
	})

	t.Run("payload with line breaks", func(t *testing.T) {
		enc := base64.StdEncoding.EncodeToString(pngData)
		raw := "data:image/png;base64," + enc[:10] + "\n" + enc[10:]
		_, err := moderation.ParseDataURL(raw, 0)
		assert.NoError(t, err)
	})

	t.Run("round trip through DataURL", func(t *testing.T) {
		img := moderation.Image{MIMEType: "image/png", Data: pngData}
		parsed, err := moderation.ParseDataURL(img.DataURL(), 0)
		require.NoError(t, err)
		assert.Equal(t, img, *parsed)
	})

	tests := []struct {
		name    string
		raw     string
		max     int
		wantErr error
	}{
		{"remote url", "https://example.com/cat.png", 0, moderation.ErrUnsupportedImageRef},
		{"missing comma", "data:image/png;base64", 0, moderation.ErrInvalidImage},
		{"not base64", "data:image/png," + string(pngData[:4]), 0, moderation.ErrInvalidImage},
		{"non image media type", "data:text/plain;base64,aGVsbG8=", 0, moderation.ErrInvalidImage},
		{"garbage bytes", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("definitely not an image")), 0, moderation.ErrInvalidImage},
		{"empty payload", "data:image/png;base64,", 0, moderation.ErrInvalidImage},
		{"too large", "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData), 16, moderation.ErrImageTooLarge},
		{"bad base64", "data:image/png;base64," + strings.Repeat("!", 12), 0, moderation.ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := moderation.ParseDataURL(tt.raw, tt.max)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, moderation.IsInputError(err))
		})
	}
}
