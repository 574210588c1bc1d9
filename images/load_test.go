package images

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"frame.png", "frame.jpg", "frame.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(solidImage(64, 48, color.NRGBA{R: 200, G: 10, B: 10, A: 255}), path))

			img, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 64, img.Bounds().Dx())
			assert.Equal(t, 48, img.Bounds().Dy())
		})
	}
}

func TestLoadRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.prototxt")
	require.NoError(t, os.WriteFile(path, []byte("name: \"MobileNet-SSD\"\ninput: \"data\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotImage), "got %v", err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotImage))
}

func TestSaveUnsupportedExtension(t *testing.T) {
	err := Save(solidImage(4, 4, color.White), filepath.Join(t.TempDir(), "out.xyz"))
	assert.Error(t, err)
}

// exifOrientation is a big-endian APP1 segment holding a single Orientation tag.
func exifOrientation(value byte) []byte {
	return []byte{
		0xFF, 0xE1, 0x00, 0x22, // APP1, length 34
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // TIFF header, IFD at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, value, 0x00, 0x00, // Orientation, SHORT
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
}

func TestLoadAppliesEXIFOrientation(t *testing.T) {
	// Left half red, right half blue, stored 64x32.
	img := solidImage(64, 32, color.NRGBA{B: 255, A: 255})
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)))
	encoded := buf.Bytes()
	require.Equal(t, []byte{0xFF, 0xD8}, encoded[:2])

	data := append(append(append([]byte{}, encoded[:2]...), exifOrientation(6)...), encoded[2:]...)
	path := filepath.Join(t.TempDir(), "portrait.jpg")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, loaded.Bounds().Dx())
	assert.Equal(t, 64, loaded.Bounds().Dy())

	// Rotated 90 degrees clockwise: the red half is now on top.
	r, _, b, _ := loaded.At(16, 8).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, b>>8, uint32(60))

	r, _, b, _ = loaded.At(16, 56).RGBA()
	assert.Less(t, r>>8, uint32(60))
	assert.Greater(t, b>>8, uint32(200))
}
