package media

import (
	"fmt"
	"io"
)

const (
	// MaxAssetBytes is the hard upper bound for any downloaded payload.
	MaxAssetBytes int64 = 200 * 1024 * 1024
	// DefaultMaxImageBytes caps prefetched images unless overridden.
	DefaultMaxImageBytes int64 = 20 * 1024 * 1024
)

// ClampMaxBytes returns maxBytes bounded to (0, MaxAssetBytes], using
// DefaultMaxImageBytes for non-positive input.
func ClampMaxBytes(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return DefaultMaxImageBytes
	}
	if maxBytes > MaxAssetBytes {
		return MaxAssetBytes
	}
	return maxBytes
}

// ReadAllWithLimit reads from reader and rejects payloads larger than maxBytes.
func ReadAllWithLimit(reader io.Reader, maxBytes int64) ([]byte, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be greater than 0")
	}
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrAssetTooLarge, maxBytes)
	}
	return data, nil
}
