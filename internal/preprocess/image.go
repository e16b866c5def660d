package preprocess

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/mediavault/service/internal/schema"
)

// ImagePlugin claims any buffer that decodes as a known raster format and
// emits a downscaled preview plus, for wide images, a size-capped preferred
// rendition. Derived renditions are re-encoded as JPEG, so a preferred
// rendition of, say, a PNG changes the file extension.
type ImagePlugin struct {
	previewWidth int
	resizeLimit  int
	quality      int
	preferredExt string
	log          *logrus.Entry
}

// NewImagePlugin configures an image plugin. quality is the JPEG encode
// quality as a 0..1 factor. resizeLimit is the source width above which a
// preferred rendition is produced; it has drifted between deployments, so it
// is a parameter rather than a constant.
func NewImagePlugin(previewWidth, resizeLimit int, quality float64, log *logrus.Logger) *ImagePlugin {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	return &ImagePlugin{
		previewWidth: previewWidth,
		resizeLimit:  resizeLimit,
		quality:      q,
		log:          log.WithField("component", "image-plugin"),
	}
}

// ContentCategory is always image.
func (p *ImagePlugin) ContentCategory() schema.Category {
	return schema.CategoryImage
}

// PreferredExtension is "jpg" once a preferred rendition has been emitted,
// "" otherwise.
func (p *ImagePlugin) PreferredExtension() string {
	return p.preferredExt
}

// CanProcess probes the buffer's header for a known raster format without
// materializing the full image.
func (p *ImagePlugin) CanProcess(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}

// Process emits the original unchanged, a preview at the configured width,
// and a preferred rendition when the source is wider than the resize limit.
// A buffer that passed CanProcess but fails full decode (truncated or
// corrupt stream) degrades to original-only; the upload itself never fails
// over a rendition we could not build.
func (p *ImagePlugin) Process(data []byte) map[schema.Variant][]byte {
	out := map[schema.Variant][]byte{schema.VariantOriginal: data}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		p.log.WithError(err).Warn("raster decode failed after positive probe, storing original only")
		return out
	}
	width := img.Bounds().Dx()

	preview, err := p.shrinkToWidth(img, p.previewWidth)
	if err != nil {
		p.log.WithError(err).Warn("preview encode failed")
	} else {
		out[schema.VariantPreview] = preview
	}

	if width > p.resizeLimit {
		preferred, err := p.shrinkToWidth(img, p.resizeLimit)
		if err != nil {
			p.log.WithError(err).Warn("preferred rendition encode failed")
		} else {
			out[schema.VariantPreferred] = preferred
			p.preferredExt = "jpg"
		}
	}
	return out
}

// shrinkToWidth scales img to targetWidth preserving aspect ratio, with the
// height rounded half-up so preview dimensions stay predictable. A target
// wider than the source upscales; narrow images still get a preview.
func (p *ImagePlugin) shrinkToWidth(img image.Image, targetWidth int) ([]byte, error) {
	ratio := float64(targetWidth) / float64(img.Bounds().Dx())
	height := int(math.Round(ratio * float64(img.Bounds().Dy())))
	if height < 1 {
		height = 1
	}
	resized := imaging.Resize(img, targetWidth, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
