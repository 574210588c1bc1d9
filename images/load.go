package images

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ErrNotImage is returned when a file's content is not a raster image.
var ErrNotImage = errors.New("not an image")

// Load reads and decodes an image file.
//
// The content type is sniffed before decoding so that a model file or any other
// non-image passed in the image position fails with ErrNotImage rather than a
// decoder error. JPEG EXIF orientation is applied, so the network and the
// drawing both see the image upright.
//
// Arguments:
//   - path: Path to a JPEG, PNG, GIF, BMP or TIFF file.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the file cannot be read, is not an image or cannot be decoded.
func Load(path string) (image.Image, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", path)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.Wrapf(ErrNotImage, "%s has content type %s", path, mtype.String())
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", path)
	}
	return img, nil
}

// Save encodes an image to path, choosing the format from the file extension.
//
// Arguments:
//   - img: The image to write.
//   - path: Destination path ending in .jpg, .jpeg, .png, .gif, .bmp or .tif.
//
// Returns:
//   - error: An error if the extension is unsupported or the write fails.
func Save(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return errors.Wrapf(err, "cannot save %s", path)
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "failed to save image %s", path)
	}
	return nil
}
