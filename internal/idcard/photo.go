package idcard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

const (
	photoMaxWidth  = 400
	photoMaxHeight = 500
	photoQuality   = 85

	// Some photo hosts reject requests without a browser user agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// PhotoFetcher downloads student photos and normalises them for the card.
type PhotoFetcher struct {
	client *http.Client
}

// NewPhotoFetcher builds a fetcher with the given timeout.
func NewPhotoFetcher(timeout time.Duration) *PhotoFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PhotoFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the photo at url and returns JPEG bytes scaled to fit
// the card's photo frame. Any failure returns an error; callers decide
// whether a card without a photo is acceptable.
func (f *PhotoFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build photo request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download photo: unexpected status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 20<<20))
	if err != nil {
		return nil, fmt.Errorf("read photo body: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	// Fit keeps aspect ratio; JPEG encoding drops any alpha channel.
	img = imaging.Fit(img, photoMaxWidth, photoMaxHeight, imaging.Lanczos)

	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(photoQuality)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
