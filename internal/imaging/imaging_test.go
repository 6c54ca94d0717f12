package imaging

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNormalizePreviewPassThrough(t *testing.T) {
	src := encodeTestPNG(t, 128, 64)

	out, err := NormalizePreview(src)
	if err != nil {
		t.Fatalf("NormalizePreview: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Error("small PNG should pass through unchanged")
	}
}

func TestNormalizePreviewDownscales(t *testing.T) {
	src := encodeTestPNG(t, 1024, 512)

	out, err := NormalizePreview(src)
	if err != nil {
		t.Fatalf("NormalizePreview: %v", err)
	}
	w, h := decodeSize(t, out)
	if w != PreviewMaxWidth || h != PreviewMaxWidth/2 {
		t.Errorf("result = %dx%d, want %dx%d", w, h, PreviewMaxWidth, PreviewMaxWidth/2)
	}
}

func TestNormalizePreviewRejectsOtherFormats(t *testing.T) {
	inputs := map[string][]byte{
		"jpeg magic": {0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46},
		"plain text": []byte("not an image at all"),
		"empty":      {},
	}

	for name, data := range inputs {
		if _, err := NormalizePreview(data); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestNormalizePreviewTruncatedPNG(t *testing.T) {
	src := encodeTestPNG(t, 512, 512)

	if _, err := NormalizePreview(src[:20]); err == nil {
		t.Error("expected an error for a truncated PNG")
	}
}
