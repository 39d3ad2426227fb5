package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"quizhub/internal/model"
)

// Per-kind upload caps, matching what the backend accepts.
const (
	maxImageSize = 10 << 20
	maxAudioSize = 50 << 20
	maxVideoSize = 100 << 20
)

// mediaKindFor infers the media kind from a MIME type. Unknown types fall
// back to image, which the server will reject if it disagrees.
func mediaKindFor(mimeType string) model.MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return model.MediaAudio
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaVideo
	default:
		return model.MediaImage
	}
}

func maxSizeFor(kind model.MediaKind) int64 {
	switch kind {
	case model.MediaAudio:
		return maxAudioSize
	case model.MediaVideo:
		return maxVideoSize
	default:
		return maxImageSize
	}
}

// UploadMedia uploads a file as multipart form data and returns the stored
// media reference. Size is validated client-side against the per-kind cap
// before any bytes go out.
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader, size int64, mimeType string) (*model.Media, error) {
	kind := mediaKindFor(mimeType)
	if limit := maxSizeFor(kind); size > limit {
		return nil, fmt.Errorf("%s file too large: %d bytes (limit %d)", kind, size, limit)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"original_filename": filename,
		"file_size":         strconv.FormatInt(size, 10),
		"mime_type":         mimeType,
		"media_type":        string(kind),
	} {
		if err := w.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	body := &payload{contentType: w.FormDataContentType(), data: buf.Bytes()}
	data, err := c.do(ctx, http.MethodPost, "/media/", nil, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.Media](data)
}

// DeleteMedia removes an uploaded file.
func (c *Client) DeleteMedia(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/media/%d/", id), nil, nil)
	return err
}
