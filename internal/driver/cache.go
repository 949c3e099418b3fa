package driver

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"lumen/internal/diag"
	"lumen/internal/source"
)

// Bump when the payload format changes; older entries become cache misses.
const cacheSchemaVersion uint16 = 1

// Cache persists per-file diagnostics keyed by content hash, so a driver can
// skip re-checking files that have not changed between runs. Spans are stored
// as bare offsets and rebound to the caller's FileID on load, which is why
// only diagnostics fully contained in the keyed file are cached.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache initializes a cache rooted at dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenDefaultCache places the cache under XDG_CACHE_HOME (or ~/.cache).
func OpenDefaultCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCache(filepath.Join(base, app))
}

type cachedLabel struct {
	Role  uint8
	Start uint32
	End   uint32
	None  bool // unspanned label
	Msg   string
}

type cachedDiagnostic struct {
	Severity uint8
	Code     string
	Message  string
	Labels   []cachedLabel
	Notes    []string
}

type cachePayload struct {
	Schema uint16
	Items  []cachedDiagnostic
}

func (c *Cache) pathFor(hash [32]byte) string {
	return filepath.Join(c.dir, "diags", hex.EncodeToString(hash[:])+".msgpack")
}

// Cacheable reports whether d can be stored under a single file's key: every
// label is either unspanned or anchored in file id.
func Cacheable(d diag.Diagnostic, id source.FileID) bool {
	for _, l := range d.Labels {
		if !l.Span.IsUnspanned() && l.Span.File != id {
			return false
		}
	}
	return true
}

// Store writes the diagnostics for the file f. Diagnostics anchored in other
// files are skipped; they cannot be rebound on load.
func (c *Cache) Store(f *source.File, diags []diag.Diagnostic) error {
	payload := cachePayload{Schema: cacheSchemaVersion}
	for _, d := range diags {
		if !Cacheable(d, f.ID) {
			continue
		}
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     d.Code.String(),
			Message:  d.Message,
			Notes:    d.Notes,
		}
		for _, l := range d.Labels {
			cd.Labels = append(cd.Labels, cachedLabel{
				Role:  uint8(l.Role),
				Start: l.Span.Start,
				End:   l.Span.End,
				None:  l.Span.IsUnspanned(),
				Msg:   l.Msg,
			})
		}
		payload.Items = append(payload.Items, cd)
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}

	path := c.pathFor(f.Hash)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the cached diagnostics for content matching f's hash, rebound
// to f's FileID. Any miss, decode failure or schema mismatch reads as a
// plain miss — the cache never turns into an error source.
func (c *Cache) Load(f *source.File) ([]diag.Diagnostic, bool) {
	c.mu.RLock()
	data, err := os.ReadFile(c.pathFor(f.Hash))
	c.mu.RUnlock()
	if err != nil {
		return nil, false
	}

	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}

	diags := make([]diag.Diagnostic, 0, len(payload.Items))
	for _, cd := range payload.Items {
		// Corrupt enum bytes would index past the collector's counters;
		// treat them like a schema mismatch.
		if cd.Severity > uint8(diag.SevBug) {
			return nil, false
		}
		b := diag.New(diag.Severity(cd.Severity), cd.Message).WithCode(diag.Code(cd.Code))
		for _, cl := range cd.Labels {
			if cl.Role > uint8(diag.LabelSecondary) {
				return nil, false
			}
			sp := source.Unspanned()
			if !cl.None {
				sp = source.NewSpan(f.ID, cl.Start, cl.End)
			}
			if diag.LabelRole(cl.Role) == diag.LabelPrimary {
				b = b.WithPrimaryLabel(sp, cl.Msg)
			} else {
				b = b.WithSecondaryLabel(sp, cl.Msg)
			}
		}
		for _, note := range cd.Notes {
			b = b.WithNote(note)
		}
		d, err := b.Finish()
		if err != nil {
			return nil, false
		}
		diags = append(diags, d)
	}
	return diags, true
}
