package documents

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const (
	thumbnailWidth   = 400
	thumbnailHeight  = 560
	maxThumbnailSize = 5 << 20 // 5MB
)

// renderThumbnail decodes r and fits it into the thumbnail box as PNG.
// Images already inside the box keep their size.
func renderThumbnail(r io.Reader) ([]byte, error) {
	src, err := imaging.Decode(io.LimitReader(r, maxThumbnailSize+1), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported image: %v", ErrInvalidInput, err)
	}
	img := imaging.Fit(src, thumbnailWidth, thumbnailHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbnailKey keeps raw user ids out of object keys.
func thumbnailKey(userID, documentID string) string {
	sum := sha256.Sum256([]byte(userID))
	return fmt.Sprintf("thumbnails/%s/%s.png", hex.EncodeToString(sum[:]), documentID)
}
