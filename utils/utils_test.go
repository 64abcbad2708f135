package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	ok := IsValidUrl("https://maps.example.com/share/abc123")
	if !ok {
		t.Errorf("a valid URL should have been accepted")
	}
}

func TestUtils_ShouldRejectPlainPaths(t *testing.T) {
	for _, path := range []string{"drawing.webp", "./out/drawing.json", "-"} {
		if IsValidUrl(path) {
			t.Errorf("%q is a file path, not a URL", path)
		}
	}
}

func TestUtils_ShouldDetectWebPContentType(t *testing.T) {
	// A WebP header is enough for content sniffing.
	header := append([]byte("RIFF"), 0x24, 0, 0, 0)
	header = append(header, []byte("WEBPVP8 ")...)

	path := filepath.Join(t.TempDir(), "sample.webp")
	if err := os.WriteFile(path, header, 0644); err != nil {
		t.Fatalf("could not write the sample file: %v", err)
	}

	ctype, err := DetectContentType(path)
	if err != nil {
		t.Fatalf("sniffing failed: %v", err)
	}
	if ctype != "image/webp" {
		t.Errorf("content type = %q, want image/webp", ctype)
	}
}

func TestUtils_MathHelpers(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Errorf("Min should return the smaller value")
	}
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Errorf("Max should return the bigger value")
	}
	if Abs(-4.5) != 4.5 || Abs(4.5) != 4.5 {
		t.Errorf("Abs should drop the sign")
	}
}
