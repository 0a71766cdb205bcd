package idcard

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImagePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestPhotoFetchScalesToFrame(t *testing.T) {
	payload := testImagePNG(t, 1200, 1600)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	fetcher := NewPhotoFetcher(5 * time.Second)
	jpegBytes, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 400)
	assert.LessOrEqual(t, bounds.Dy(), 500)
}

func TestPhotoFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewPhotoFetcher(5 * time.Second)
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestPhotoFetchUnreachableHost(t *testing.T) {
	fetcher := NewPhotoFetcher(500 * time.Millisecond)
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/nope.jpg")
	assert.Error(t, err)
}
