package apkicons

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/jward/apkicons/internal/resource"
)

// Density-independent sizes of generated variants.
const (
	iconDP         = 48
	bannerWidthDP  = 160
	bannerHeightDP = 90
)

// Icon returns the application icon: the first application variant that
// decodes as a raster image.
func (m *Model) Icon() (image.Image, error) {
	return m.IconAt(m.Index(RowApplication, 0, Index{}))
}

// IconAt decodes the image shown for idx. Icon rows decode their own file.
// The application row and activity rows decode their first raster variant.
func (m *Model) IconAt(idx Index) (image.Image, error) {
	var candidates []*IconNode
	switch n := idx.node.(type) {
	case *IconNode:
		candidates = []*IconNode{n}
	case *ActivityNode:
		candidates = n.Children()
	case *applicationGroup:
		candidates = n.Children()
	default:
		return nil, ErrInvalidIndex
	}
	if len(candidates) == 0 {
		return nil, ErrNoIcon
	}
	var firstErr error
	for _, icon := range candidates {
		img, err := m.decodeIcon(icon)
		if err == nil {
			return img, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func (m *Model) decodeIcon(icon *IconNode) (image.Image, error) {
	h, ok := m.proxies.Key(icon)
	if !ok {
		return nil, ErrInvalidIndex
	}
	if img, ok := m.images.Get(h); ok {
		return img, nil
	}
	p := m.src.PathOf(h)
	if isVectorResource(p) {
		return nil, fmt.Errorf("apkicons: decode %s: %w", p, ErrUnsupportedFormat)
	}
	data, err := m.src.ContentOf(h)
	if err != nil {
		return nil, fmt.Errorf("apkicons: read %s: %w", p, err)
	}
	img, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("apkicons: decode %s: %w", p, err)
	}
	m.images.Add(h, img)
	return img, nil
}

// IconSize returns the pixel size of the icon at idx without caching a
// decoded image.
func (m *Model) IconSize(idx Index) (image.Point, error) {
	h, ok := m.MapToSource(idx)
	if !ok {
		return image.Point{}, ErrInvalidIndex
	}
	if img, ok := m.images.Peek(h); ok {
		return img.Bounds().Size(), nil
	}
	data, err := m.src.ContentOf(h)
	if err != nil {
		return image.Point{}, fmt.Errorf("apkicons: read %s: %w", m.src.PathOf(h), err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, fmt.Errorf("apkicons: decode %s: %w", m.src.PathOf(h), ErrUnsupportedFormat)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupportedFormat
	}
	return img, err
}

func decodeFile(p string) (image.Image, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// isVectorResource reports whether p is an XML drawable (adaptive or vector
// icon) rather than a raster image.
func isVectorResource(p string) bool {
	return strings.EqualFold(path.Ext(p), ".xml")
}

// renderVariant scales img for the variant at p. The variant keeps the
// pixel size of its current content when that decodes; otherwise the size
// follows the density of p.
func renderVariant(img image.Image, p string, t IconType, current []byte) ([]byte, error) {
	var size image.Point
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(current)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		size = image.Pt(cfg.Width, cfg.Height)
	} else if t == TypeBanner {
		size = image.Pt(resource.Scale(p, bannerWidthDP), resource.Scale(p, bannerHeightDP))
	} else {
		size = image.Pt(resource.Scale(p, iconDP), resource.Scale(p, iconDP))
	}
	return encode(p, fit(img, size))
}

// fit scales src to fit inside size, keeping its aspect ratio, centred on a
// transparent canvas.
func fit(src image.Image, size image.Point) image.Image {
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}
	w, h := size.X, sb.Dy()*size.X/sb.Dx()
	if h > size.Y {
		w, h = sb.Dx()*size.Y/sb.Dy(), size.Y
	}
	off := image.Pt((size.X-w)/2, (size.Y-h)/2)
	draw.CatmullRom.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(w, h))}, src, sb, draw.Over, nil)
	return dst
}

func encode(p string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		if strings.HasSuffix(strings.ToLower(p), ".9.png") {
			return nil, ErrUnsupportedFormat
		}
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return buf.Bytes(), nil
}
