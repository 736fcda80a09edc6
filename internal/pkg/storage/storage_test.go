package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "upload/ab/file.txt", strings.NewReader("hello")))

	rc, err := s.Get(ctx, "upload/ab/file.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))
	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"), "deleting twice is fine")

	_, err = s.Get(ctx, "upload/ab/file.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, p := range []string{"", "../escape.txt", "upload/../../escape.txt", "/etc/passwd"} {
		assert.ErrorIs(t, s.Save(ctx, p, strings.NewReader("x")), ErrInvalidPath, p)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func decodedSize(t *testing.T, buf *bytes.Buffer) image.Point {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return image.Pt(cfg.Width, cfg.Height)
}

func TestImageProcessor(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.Fit(bytes.NewReader(encodePNG(t, 3200, 1600)), 1600, 1600)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1600, 800), decodedSize(t, out))

	out, err = p.Fit(bytes.NewReader(encodePNG(t, 300, 200)), 1600, 1600)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(300, 200), decodedSize(t, out))

	thumb, err := p.Thumbnail(bytes.NewReader(encodePNG(t, 640, 480)), 200, 200)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 200), decodedSize(t, thumb))

	_, err = p.Fit(strings.NewReader("not an image"), 100, 100)
	assert.Error(t, err)
}
