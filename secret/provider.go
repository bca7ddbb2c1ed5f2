package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves secretref:env:NAME from the process environment.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an env provider. A non-empty prefix is prepended to
// every reference, so secretref:env:TOKEN reads <prefix>TOKEN.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

func (p *EnvProvider) Name() string { return "env" }

func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(p.prefix + ref)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, p.prefix+ref)
	}
	return v, nil
}

func (p *EnvProvider) Close() error { return nil }

// DefaultSecretsDir is where container runtimes mount file secrets.
const DefaultSecretsDir = "/run/secrets"

// FileProvider resolves secretref:file:NAME from files under a directory.
// Relative references are joined to the directory; absolute references must
// stay inside it. Trailing whitespace is trimmed from file contents.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file provider rooted at dir.
// An empty dir uses DefaultSecretsDir.
func NewFileProvider(dir string) *FileProvider {
	if dir == "" {
		dir = DefaultSecretsDir
	}
	return &FileProvider{dir: filepath.Clean(dir)}
}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dir, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(p.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidRef, ref, p.dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}

func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
