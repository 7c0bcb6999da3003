package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
)

// imageChunk builds the single chunk an image file produces: a
// synthetic description as content, with the re-encoded PNG payload
// carried alongside.
func imageChunk(content []byte, fileName string) (domain.Chunk, error) {
	img, err := imaging.Decode(bytes.NewReader(content))
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("decoding image %s: %w", fileName, err)
	}

	payload, err := encodeImagePayload(img)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("encoding image %s: %w", fileName, err)
	}

	return domain.Chunk{
		Type:      domain.ChunkTypeImage,
		Content:   "Image: " + fileName,
		ImageData: payload,
		FileName:  fileName,
	}, nil
}

// encodeImagePayload normalises an image to PNG and base64-encodes it.
// All stored image payloads share one format regardless of source.
func encodeImagePayload(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
