// Package diskcache implements media.ContentCache on a local directory.
// Content for a key is written to <root>/<hash[:2]>/<hash><ext>, where hash
// is the hex SHA-256 of the key and ext is sniffed from the content.
package diskcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/memohai/cqcode/internal/media"
)

// DefaultIndexSize is the number of key to path entries kept in memory.
const DefaultIndexSize = 1024

// Cache stores downloaded media on disk and remembers recent lookups in an
// in-memory index. Files are never evicted by the cache itself.
type Cache struct {
	root   string
	index  *lru.Cache[string, string]
	logger *slog.Logger
}

// New creates a cache rooted at dir, creating it if needed.
func New(log *slog.Logger, dir string, indexSize int) (*Cache, error) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if indexSize <= 0 {
		indexSize = DefaultIndexSize
	}
	index, err := lru.New[string, string](indexSize)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Cache{
		root:   abs,
		index:  index,
		logger: log.With(slog.String("service", "diskcache")),
	}, nil
}

// Root returns the absolute cache directory.
func (c *Cache) Root() string {
	return c.root
}

// Lookup returns the cached file for key, checking the index before the disk.
func (c *Cache) Lookup(_ context.Context, key string) (string, bool, error) {
	if path, ok := c.index.Get(key); ok {
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		}
		c.index.Remove(key)
	}
	hash := hashKey(key)
	shard, err := c.hostPath(hash[:2])
	if err != nil {
		return "", false, err
	}
	entries, err := os.ReadDir(shard)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), hash) {
			continue
		}
		path := filepath.Join(shard, e.Name())
		c.index.Add(key, path)
		return path, true, nil
	}
	return "", false, nil
}

// Store writes data for key and returns the absolute path of the file.
func (c *Cache) Store(_ context.Context, key string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", media.ErrEmptyPayload
	}
	hash := hashKey(key)
	mime := mimetype.Detect(data).String()
	dest, err := c.hostPath(filepath.Join(hash[:2], hash+extensionFromMime(mime)))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".part-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("commit file: %w", err)
	}
	committed = true
	c.index.Add(key, dest)
	c.logger.Debug("cached media",
		slog.String("key", key),
		slog.String("mime", mime),
		slog.Int("size", len(data)))
	return dest, nil
}

// hostPath resolves a relative cache path and rejects anything escaping root.
func (c *Cache) hostPath(rel string) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, rel)
	}
	joined := filepath.Join(c.root, clean)
	if !strings.HasPrefix(joined, c.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", media.ErrPathTraversal, rel)
	}
	return joined, nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func extensionFromMime(mime string) string {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/amr":
		return ".amr"
	case "video/mp4":
		return ".mp4"
	default:
		return ".bin"
	}
}
