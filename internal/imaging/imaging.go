// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded icon preview images. Previews are
// stored as PNG at a bounded width; uploads may arrive as PNG or WebP
// and larger images are downscaled, preserving aspect ratio.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// PreviewMaxWidth is the widest a stored preview gets. Wider uploads
	// are downscaled; narrower ones pass through at their original size.
	PreviewMaxWidth = 256

	// maxImagePixels caps decoded size to prevent decompression bombs.
	maxImagePixels = 16_000_000
)

// NormalizePreview decodes a PNG or WebP upload and returns PNG bytes no
// wider than PreviewMaxWidth. PNG input that is already narrow enough is
// returned unchanged.
func NormalizePreview(data []byte) ([]byte, error) {
	var img image.Image

	switch ct := http.DetectContentType(data); ct {
	case "image/png":
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode preview: %w", err)
		}
		if err := checkPixels(cfg); err != nil {
			return nil, err
		}
		if cfg.Width <= PreviewMaxWidth {
			return data, nil
		}
		img, err = png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode preview: %w", err)
		}
	case "image/webp":
		cfg, err := webp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode preview: %w", err)
		}
		if err := checkPixels(cfg); err != nil {
			return nil, err
		}
		img, err = webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode preview: %w", err)
		}
	default:
		return nil, fmt.Errorf("preview must be PNG or WebP, got %s", ct)
	}

	return encodePNG(scaleToWidth(img, PreviewMaxWidth))
}

// checkPixels rejects images whose decoded size would be unreasonable
// for an icon preview.
func checkPixels(cfg image.Config) error {
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return fmt.Errorf("preview too large: %dx%d", cfg.Width, cfg.Height)
	}
	return nil
}

// scaleToWidth downscales img to the given width, preserving aspect
// ratio. Images already narrow enough are returned as-is.
func scaleToWidth(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= width {
		return img
	}

	ratio := float64(width) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, int(float64(bounds.Dy())*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
