package meshfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/mesh"
)

// ErrCacheMiss is returned by Cache.Load when no usable entry exists.
var ErrCacheMiss = errors.New("mesh cache miss")

// Extension is the file extension of compiled mesh files.
const Extension = ".mesh"

// Cache is a directory of compiled meshes keyed by source hash. Entries are
// written to a temporary file and renamed into place, so concurrent readers
// never see a partial file.
type Cache struct {
	Dir         string
	Compression Compression

	log *zap.Logger
}

// NewCache returns a cache rooted at dir. A nil logger disables logging.
func NewCache(dir string, tag Compression, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{Dir: dir, Compression: tag, log: log}
}

// Path returns the file an entry for key is stored in.
func (c *Cache) Path(key Hash) string {
	s := key.String()
	return filepath.Join(c.Dir, s[:2], s+Extension)
}

// Load returns the cached mesh for key. A missing entry, or one recorded for
// a different source, yields ErrCacheMiss. Unreadable entries are removed and
// also reported as a miss.
func (c *Cache) Load(key Hash) (*mesh.Mesh, Header, error) {
	path := c.Path(key)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.log.Debug("mesh cache miss", zap.Stringer("key", key))
		return nil, Header{}, ErrCacheMiss
	}
	if err != nil {
		return nil, Header{}, fmt.Errorf("opening cache entry: %w", err)
	}
	defer f.Close()

	m, h, err := Decode(f)
	if err != nil {
		c.log.Warn("discarding unreadable cache entry",
			zap.String("path", path),
			zap.Error(err))
		os.Remove(path)
		return nil, Header{}, ErrCacheMiss
	}
	if h.Source != key {
		c.log.Warn("cache entry source mismatch",
			zap.String("path", path),
			zap.Stringer("source", h.Source))
		return nil, Header{}, ErrCacheMiss
	}

	c.log.Debug("mesh cache hit",
		zap.Stringer("key", key),
		zap.Int("vertices", h.VertexCount),
		zap.Stringer("compression", h.Compression))
	return m, h, nil
}

// Store writes the compiled mesh m under key.
func (c *Cache) Store(key Hash, m *mesh.Mesh) (Header, error) {
	path := c.Path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Header{}, fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*"+Extension)
	if err != nil {
		return Header{}, fmt.Errorf("creating cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())

	h, err := Encode(tmp, m, key, c.Compression)
	if err != nil {
		tmp.Close()
		return Header{}, err
	}
	if err := tmp.Close(); err != nil {
		return Header{}, fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Header{}, fmt.Errorf("installing cache entry: %w", err)
	}

	c.log.Debug("mesh cached",
		zap.Stringer("key", key),
		zap.Int("raw_bytes", h.RawSize),
		zap.Int("stored_bytes", h.CompressedSize),
		zap.Stringer("compression", h.Compression))
	return h, nil
}

// Remove deletes the entry for key. Removing a missing entry is not an error.
func (c *Cache) Remove(key Hash) error {
	err := os.Remove(c.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}
