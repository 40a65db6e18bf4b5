package upstream

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies the bearer token attached to every upstream request.
// The token itself is issued and refreshed by the external identity provider;
// the gateway only reads it from persistent client storage.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource returns a fixed token, typically injected via config.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token() (string, error) {
	if s == "" {
		return "", fmt.Errorf("no upstream token configured")
	}
	return string(s), nil
}

// FileTokenSource reads the token from a file, re-reading it when the file
// changes so an external refresher can rotate it in place.
type FileTokenSource struct {
	Path string

	mu      sync.Mutex
	cached  string
	modTime time.Time
}

// NewFileTokenSource builds a file-backed token source.
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{Path: path}
}

// Token implements TokenSource.
func (f *FileTokenSource) Token() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info, err := os.Stat(f.Path)
	if err != nil {
		return "", fmt.Errorf("stat token file: %w", err)
	}
	if f.cached != "" && info.ModTime().Equal(f.modTime) {
		return f.cached, nil
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.Path)
	}
	f.cached = token
	f.modTime = info.ModTime()
	return token, nil
}
