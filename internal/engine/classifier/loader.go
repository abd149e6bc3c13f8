package classifier

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Loader resolves a content ref into a decoded image.
type Loader func(ref string) (image.Image, error)

// LoadImage opens and fully decodes a PNG or JPEG file. Truncated or corrupt
// files fail here rather than inside the model.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
