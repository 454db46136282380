package imagesvc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/corvran/adventure-gm/internal/filestore"
)

// cacheMaxWidth bounds the locally-cached copy so the static asset server
// never has to stream an oversized upstream image.
const cacheMaxWidth = 1600

// CachingService wraps an upstream Service, fetching its returned URL once
// and caching a resized copy under <root>/backgrounds/<hash>.jpg so
// replays of old scenes don't depend on the upstream host.
type CachingService struct {
	Upstream Service
	Root     string // STATIC_ROOT/backgrounds
	client   *http.Client
}

// NewCachingService builds a cache wrapping upstream, rooted at root.
func NewCachingService(upstream Service, root string) *CachingService {
	return &CachingService{Upstream: upstream, Root: root, client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch delegates to Upstream, then best-effort mirrors the result locally.
// A cache-population failure never fails the call — the original upstream
// URL is still returned.
func (c *CachingService) Fetch(ctx context.Context, req Request) (string, error) {
	url, err := c.Upstream.Fetch(ctx, req)
	if err != nil || url == "" {
		return url, err
	}
	if localPath, ok := c.populate(ctx, url); ok {
		return "/backgrounds/" + localPath, nil
	}
	return url, nil
}

func (c *CachingService) populate(ctx context.Context, url string) (string, bool) {
	hash := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(hash[:]) + ".jpg"
	if filestore.Exists(c.Root, name) {
		return name, true
	}

	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", false
	}
	if img.Bounds().Dx() > cacheMaxWidth {
		img = imaging.Resize(img, cacheMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return "", false
	}
	if err := filestore.WriteFile(c.Root, name, buf.Bytes()); err != nil {
		return "", false
	}
	return name, true
}
