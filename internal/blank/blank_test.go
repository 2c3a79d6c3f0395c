package blank

import (
	"bytes"
	"image/jpeg"
	"testing"
)

func TestData(t *testing.T) {
	t.Run("is a well-formed JPEG", func(t *testing.T) {
		if len(Data) < 4 {
			t.Fatalf("embedded picture is only %d bytes", len(Data))
		}
		if !bytes.HasPrefix(Data, []byte{0xFF, 0xD8}) {
			t.Error("missing SOI marker")
		}
		if !bytes.HasSuffix(Data, []byte{0xFF, 0xD9}) {
			t.Error("missing EOI marker")
		}
	})

	t.Run("decodes to the declared resolution", func(t *testing.T) {
		img, err := jpeg.Decode(bytes.NewReader(Data))
		if err != nil {
			t.Fatalf("failed to decode embedded picture: %v", err)
		}

		bounds := img.Bounds()
		if bounds.Dx() != Width || bounds.Dy() != Height {
			t.Errorf("decoded size %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), Width, Height)
		}
	})
}
