package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/piyusharama/transcript-generator/internal/ports"
)

// DefaultSize is how many inputs are remembered
const DefaultSize = 20

// RecentFiles remembers the most recently processed inputs in a bounded LRU,
// persisted as YAML between sessions.
type RecentFiles struct {
	path    string
	entries *lru.Cache[string, time.Time]
	stat    func(string) (os.FileInfo, error)
	mu      sync.Mutex
}

type fileEntry struct {
	Path     string    `yaml:"path"`
	LastUsed time.Time `yaml:"last_used"`
}

type historyFile struct {
	Recent []fileEntry `yaml:"recent"`
}

// New creates an empty history saved to path
func New(path string, size int) (*RecentFiles, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, time.Time](size)
	if err != nil {
		return nil, err
	}
	return &RecentFiles{path: path, entries: entries, stat: os.Stat}, nil
}

// Load reads the history at path. A missing file yields an empty history.
func Load(path string, size int) (*RecentFiles, error) {
	r, err := New(path, size)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}

	var hf historyFile
	if err := yaml.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	// Oldest first so the LRU ends with the newest as most recent
	sort.SliceStable(hf.Recent, func(i, j int) bool {
		return hf.Recent[i].LastUsed.Before(hf.Recent[j].LastUsed)
	})
	for _, e := range hf.Recent {
		if e.Path != "" {
			r.entries.Add(e.Path, e.LastUsed)
		}
	}
	return r, nil
}

// Add records path as the most recently used input
func (r *RecentFiles) Add(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Add(path, time.Now())
}

// List returns remembered inputs that still exist, most recent first
func (r *RecentFiles) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := r.entries.Keys()
	out := make([]string, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if _, err := r.stat(keys[i]); err != nil {
			continue
		}
		out = append(out, keys[i])
	}
	return out
}

// Save writes the history file
func (r *RecentFiles) Save() error {
	r.mu.Lock()
	var hf historyFile
	for _, key := range r.entries.Keys() {
		if used, ok := r.entries.Peek(key); ok {
			hf.Recent = append(hf.Recent, fileEntry{Path: key, LastUsed: used})
		}
	}
	r.mu.Unlock()

	data, err := yaml.Marshal(&hf)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	return os.WriteFile(r.path, data, 0644)
}

var _ ports.RecentInputs = (*RecentFiles)(nil)
