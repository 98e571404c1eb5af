package views

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat means a requested image/annotation format has no
// encoder. The binding controller checks formats before capture starts,
// so hitting this mid-run indicates a wiring bug.
var ErrUnsupportedFormat = errors.New("unsupported output format")

const jpegQuality = 90

// imageExts is the raster codec registry: config format name -> file
// extension. Encoding itself is dispatched in EncodeImage.
var imageExts = map[string]string{
	"png":  "png",
	"jpg":  "jpg",
	"jpeg": "jpg",
	"bmp":  "bmp",
	"tif":  "tif",
	"tiff": "tif",
}

// annotExts maps segmentation container formats to extensions.
var annotExts = map[string]string{
	"npy": "npy",
	"png": "png",
}

// ImageFormatSupported reports whether format has a raster encoder.
func ImageFormatSupported(format string) bool {
	_, ok := imageExts[format]
	return ok
}

// AnnotFormatSupported reports whether format has a label-map encoder.
func AnnotFormatSupported(format string) bool {
	_, ok := annotExts[format]
	return ok
}

// ImageExt returns the file extension for a raster format.
func ImageExt(format string) string { return imageExts[format] }

// AnnotExt returns the file extension for an annotation format.
func AnnotExt(format string) string { return annotExts[format] }

// EncodeImage writes img to w in the named raster format.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "bmp":
		return bmp.Encode(w, img)
	case "tif", "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: image format %q", ErrUnsupportedFormat, format)
	}
}

// LabelsToGray16 packs a label map into a 16-bit grayscale image, the
// raster rendition of a segmentation mask. Label ids above 65535 would
// alias; synthetic and renderer label spaces stay far below that.
func LabelsToGray16(labels []uint32, w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint16(labels[y*w+x])
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(v >> 8)
			img.Pix[i+1] = uint8(v)
		}
	}
	return img
}
