package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"

	"markspan/internal/marker"
	"markspan/internal/reconstruct"
	"markspan/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Key identifies a cached reconstruction: file content plus the settings
// that shape the output.
type Key [32]byte

// CacheKey hashes content and the configuration fingerprint.
func CacheKey(content []byte, fingerprint string) Key {
	h := blake3.New()
	_, _ = h.Write(content)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(fingerprint))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// DiskCache хранит результаты реконструкции на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached form of a block list. Spans are stored as
// offsets; the file ID is reattached on load.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16      `msgpack:"schema"`
	Source [32]byte    `msgpack:"src"` // source.File.Hash
	Size   uint32      `msgpack:"size"`
	Blocks []diskBlock `msgpack:"blocks"`
}

type diskBlock struct {
	Kind  uint8  `msgpack:"k"`
	Match uint8  `msgpack:"m,omitempty"`
	Text  string `msgpack:"t"`
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

func newDiskPayload(blocks []reconstruct.Block, file *source.File) *DiskPayload {
	p := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Source: file.Hash,
		Blocks: make([]diskBlock, len(blocks)),
	}
	for i, b := range blocks {
		p.Blocks[i] = diskBlock{
			Kind:  uint8(b.Kind),
			Match: uint8(b.Match),
			Text:  b.Text,
			Start: b.Span.Start,
			End:   b.Span.End,
		}
		p.Size = max(p.Size, b.Span.End)
	}
	return p
}

// blocks restores the block list for file. A payload from another schema or
// another content is rejected.
func (p *DiskPayload) blocks(file *source.File) ([]reconstruct.Block, bool) {
	if p.Schema != diskCacheSchemaVersion || p.Source != file.Hash || p.Size > file.Size() {
		return nil, false
	}
	out := make([]reconstruct.Block, len(p.Blocks))
	for i, b := range p.Blocks {
		if b.Start > b.End {
			return nil, false
		}
		out[i] = reconstruct.Block{
			Kind:  reconstruct.BlockKind(b.Kind),
			Match: marker.Match(b.Match),
			Text:  b.Text,
			Span:  source.Span{File: file.ID, Start: b.Start, End: b.End},
		}
	}
	return out, true
}

// OpenDiskCache initializes a disk cache under dir, or under the standard
// user cache location for app when dir is empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Key) string {
	hexKey := key.String()
	// шардируем по первым двум символам, чтобы не копить тысячи файлов в одном каталоге
	return filepath.Join(c.dir, "blocks", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Key, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Key, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
