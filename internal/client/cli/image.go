package cli

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"slices"
)

const maxImageSize = 2048 * 1024

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// loadImage reads an image file and returns it as a data URL.
func loadImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > maxImageSize {
		return "", fmt.Errorf("image is larger than %d KB", maxImageSize/1024)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	if !slices.Contains(allowedImageTypes, mime) {
		return "", fmt.Errorf("unsupported image type %s", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
