package media

import "errors"

var (
	// ErrAssetTooLarge indicates the payload exceeds the configured max asset size.
	ErrAssetTooLarge = errors.New("media asset too large")
	// ErrPathTraversal indicates a storage key attempted directory traversal.
	ErrPathTraversal = errors.New("path traversal is forbidden")
	// ErrEmptyPayload indicates a download or store call carried no bytes.
	ErrEmptyPayload = errors.New("media payload is empty")
	// ErrCacheUnavailable indicates no content cache is configured.
	ErrCacheUnavailable = errors.New("content cache unavailable")
)
