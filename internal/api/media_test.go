package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"quizhub/internal/model"
	"quizhub/internal/session"
)

func TestMediaKindFor(t *testing.T) {
	t.Parallel()

	cases := map[string]model.MediaKind{
		"image/png":  model.MediaImage,
		"audio/mpeg": model.MediaAudio,
		"video/mp4":  model.MediaVideo,
		"weird/type": model.MediaImage,
	}
	for mt, want := range cases {
		require.Equal(t, want, mediaKindFor(mt), mt)
	}
}

func TestUploadMedia_SizeCap(t *testing.T) {
	t.Parallel()

	c := New("http://unused", session.NewMemStore(), nil)
	_, err := c.UploadMedia(context.Background(), "huge.png",
		strings.NewReader(""), maxImageSize+1, "image/png")
	require.ErrorContains(t, err, "too large")
}

func TestUploadMedia_MultipartFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/media/", r.URL.Path)
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr, err := r.MultipartReader()
		require.NoError(t, err)
		fields := map[string]string{}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			b, err := io.ReadAll(part)
			require.NoError(t, err)
			fields[part.FormName()] = string(b)
		}
		require.Equal(t, "hello", fields["file"])
		require.Equal(t, "greeting.txt", fields["original_filename"])
		require.Equal(t, "5", fields["file_size"])
		require.Equal(t, "image", fields["media_type"])

		writeJSON(t, w, http.StatusCreated, model.Media{
			ID: 42, Kind: model.MediaImage, URL: "/media/42/greeting.txt",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemStore(), nil)
	m, err := c.UploadMedia(context.Background(), "greeting.txt",
		strings.NewReader("hello"), 5, "image/jpeg")
	require.NoError(t, err)
	require.EqualValues(t, 42, m.ID)
}
