// utils/images.go
package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"go-storefront/models"
)

// PublicImagePath is the URL prefix under which derived product images are
// served statically.
const PublicImagePath = "/uploads/products/"

// imageResolutions are the four derived variants, square cover-cropped
// JPEGs.
var imageResolutions = []struct {
	name string
	size int
}{
	{"thumbnail", 100},
	{"mobile", 300},
	{"tablet", 600},
	{"desktop", 1200},
}

// ImageProcessor derives the resolution variants of uploaded product images
// and manages their files on disk.
type ImageProcessor struct {
	dir string
}

// NewImageProcessor creates the product-images directory under uploadRoot
// if needed.
func NewImageProcessor(uploadRoot string) (*ImageProcessor, error) {
	dir := filepath.Join(uploadRoot, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageProcessor{dir: dir}, nil
}

// Generate decodes the uploaded source image and writes the four resolution
// variants with a unique per-upload filename token. If any variant fails,
// the variants already written are removed before the error is returned, so
// no orphaned files are left behind.
func (p *ImageProcessor) Generate(src io.Reader) (models.ProductImage, error) {
	var image models.ProductImage

	source, err := imaging.Decode(src)
	if err != nil {
		return image, fmt.Errorf("failed to decode image: %w", err)
	}

	token := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])

	written := []string{}
	for _, res := range imageResolutions {
		filename := fmt.Sprintf("%s-%s.jpg", token, res.name)
		outputPath := filepath.Join(p.dir, filename)

		variant := imaging.Fill(source, res.size, res.size, imaging.Center, imaging.Lanczos)
		if err := imaging.Save(variant, outputPath, imaging.JPEGQuality(85)); err != nil {
			for _, path := range written {
				os.Remove(path)
			}
			return models.ProductImage{}, fmt.Errorf("failed to write %s variant: %w", res.name, err)
		}
		written = append(written, outputPath)

		publicPath := PublicImagePath + filename
		switch res.name {
		case "thumbnail":
			image.Thumbnail = publicPath
		case "mobile":
			image.Mobile = publicPath
		case "tablet":
			image.Tablet = publicPath
		case "desktop":
			image.Desktop = publicPath
		}
	}

	return image, nil
}

// Remove deletes the files behind an image mapping. Missing files are
// skipped; other failures are logged and otherwise ignored.
func (p *ImageProcessor) Remove(image models.ProductImage) {
	for _, publicPath := range image.Paths() {
		if publicPath == "" {
			continue
		}
		// Base strips any path components a stored value might carry.
		path := filepath.Join(p.dir, filepath.Base(publicPath))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove image file", "path", path, "error", err)
		}
	}
}
