// Package assets loads source meshes and keeps compiled results cached in
// memory and on disk.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/pkg/formats"
	"github.com/Faultbox/meshforge/pkg/mesh"
	"github.com/Faultbox/meshforge/pkg/meshfile"
)

// Options are the compile settings that change the compiled output. They
// are part of every cache key.
type Options struct {
	Scale          float32 `cbor:"1,keyasint"` // fit radius; 0 keeps source units
	ReverseWinding bool    `cbor:"2,keyasint"`
}

// Asset is a compiled mesh and where it came from.
type Asset struct {
	Name     string
	Key      meshfile.Hash
	Mesh     *mesh.Mesh
	Bounds   mesh.Bounds // bounds of the compiled positions
	Warnings int         // source lines fixed up while parsing
	FromDisk bool        // loaded from the disk cache instead of compiled
}

// Encode writes the asset as a compiled mesh file. Bounds come from the
// asset, so meshes loaded from the disk cache keep them.
func (a *Asset) Encode(w io.Writer, tag meshfile.Compression) (meshfile.Header, error) {
	return meshfile.EncodeWithBounds(w, a.Mesh, a.Key, tag, a.Bounds)
}

// Manager compiles meshes on demand. Lookups go through the memory cache,
// then the optional disk cache, then parse and compile.
type Manager struct {
	opts  Options
	disk  *meshfile.Cache
	cache *Cache
	log   *zap.Logger
}

// NewManager creates a manager. disk may be nil to skip the disk cache and
// log may be nil to disable logging.
func NewManager(opts Options, disk *meshfile.Cache, memoryEntries int, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		opts:  opts,
		disk:  disk,
		cache: NewCache(memoryEntries),
		log:   log,
	}
}

// Load reads and compiles the OBJ file at path.
func (m *Manager) Load(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m.LoadBytes(path, data)
}

// LoadBytes compiles OBJ source data. name is only used for logging and the
// returned Asset.
func (m *Manager) LoadBytes(name string, data []byte) (*Asset, error) {
	key, err := meshfile.SourceKey(data, m.opts)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", name, err)
	}

	if asset, ok := m.cache.Get(key); ok {
		return asset, nil
	}

	if m.disk != nil {
		msh, h, err := m.disk.Load(key)
		switch {
		case err == nil:
			asset := &Asset{Name: name, Key: key, Mesh: msh, Bounds: h.Bounds, FromDisk: true}
			m.cache.Set(key, asset)
			m.log.Debug("loaded compiled mesh",
				zap.String("name", name),
				zap.Int("vertices", h.VertexCount))
			return asset, nil
		case !errors.Is(err, meshfile.ErrCacheMiss):
			m.log.Warn("disk cache unavailable", zap.String("name", name), zap.Error(err))
		}
	}

	asset, err := m.compile(name, key, data)
	if err != nil {
		return nil, err
	}

	if m.disk != nil {
		if _, err := m.disk.Store(key, asset.Mesh); err != nil {
			m.log.Warn("failed to cache compiled mesh", zap.String("name", name), zap.Error(err))
		}
	}
	m.cache.Set(key, asset)
	return asset, nil
}

func (m *Manager) compile(name string, key meshfile.Hash, data []byte) (*Asset, error) {
	obj, err := formats.ParseOBJ(data, formats.OBJOptions{ReverseWinding: m.opts.ReverseWinding})
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if obj.Warnings > 0 {
		m.log.Warn("fixed up malformed OBJ lines",
			zap.String("name", name),
			zap.Int("lines", obj.Warnings))
	}

	msh := obj.Mesh()
	bounds, _ := msh.FitToRadius(m.opts.Scale)
	msh.Compile()

	m.log.Info("compiled mesh",
		zap.String("name", name),
		zap.Int("positions", msh.PositionCount()),
		zap.Int("vertices", msh.VertexCount()),
		zap.Int("fragments", len(msh.Fragments)))

	return &Asset{
		Name:     name,
		Key:      key,
		Mesh:     msh,
		Bounds:   bounds,
		Warnings: obj.Warnings,
	}, nil
}

// Stats returns memory cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops every cached asset.
func (m *Manager) Close() {
	m.cache.Clear()
}

// DefaultMemoryEntries is the memory cache capacity used when none is given.
const DefaultMemoryEntries = 64

// Cache is an in-memory cache of compiled assets. When full, the least
// recently used entry is evicted.
type Cache struct {
	entries *lru.Cache[meshfile.Hash, *Asset]
	mu      sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache. A capacity <= 0 means DefaultMemoryEntries.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultMemoryEntries
	}
	entries, err := lru.New[meshfile.Hash, *Asset](capacity)
	if err != nil {
		panic("assets: " + err.Error())
	}
	return &Cache{entries: entries}
}

// Get retrieves an asset from the cache.
func (c *Cache) Get(key meshfile.Hash) (*Asset, bool) {
	asset, ok := c.entries.Get(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return asset, ok
}

// Set stores an asset in the cache.
func (c *Cache) Set(key meshfile.Hash, asset *Asset) {
	c.entries.Add(key, asset)
}

// Len returns the number of cached assets.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.entries.Purge()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
