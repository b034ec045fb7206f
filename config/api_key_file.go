package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kardolus/textgen/types"
)

const MaxAPIKeyFileBytes int64 = 10 * 1024

// ReadAPIKeyFile returns the trimmed key stored at path. Every failure wraps
// types.ErrMissingCredential.
func ReadAPIKeyFile(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open api key file: %w", types.ErrMissingCredential, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: failed to stat api key file: %w", types.ErrMissingCredential, err)
	}
	if !st.Mode().IsRegular() {
		return "", fmt.Errorf("%w: api key file must be a regular file", types.ErrMissingCredential)
	}
	if st.Size() > MaxAPIKeyFileBytes {
		return "", fmt.Errorf("%w: api key file too large (max %d bytes)", types.ErrMissingCredential, MaxAPIKeyFileBytes)
	}

	b, err := io.ReadAll(io.LimitReader(f, MaxAPIKeyFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read api key file: %w", types.ErrMissingCredential, err)
	}
	if int64(len(b)) > MaxAPIKeyFileBytes {
		return "", fmt.Errorf("%w: api key file too large (max %d bytes)", types.ErrMissingCredential, MaxAPIKeyFileBytes)
	}

	key := strings.TrimSpace(string(b))
	if key == "" {
		return "", fmt.Errorf("%w: api key file is empty", types.ErrMissingCredential)
	}
	return key, nil
}

// ResolveAPIKey fills APIKey from APIKeyFile when no key is set directly.
func ResolveAPIKey(c Config) (Config, error) {
	if c.APIKey != "" || c.APIKeyFile == "" {
		return c, nil
	}

	key, err := ReadAPIKeyFile(c.APIKeyFile)
	if err != nil {
		return c, err
	}

	c.APIKey = key
	return c, nil
}
