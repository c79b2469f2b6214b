package mpt

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/macrolang/mpt/internal/types"
)

const cacheFileName = "expand_cache.gob"

// DefaultCacheMaxAge is how long a cache entry stays valid regardless of
// file changes.
const DefaultCacheMaxAge = 24 * time.Hour

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// CacheEntry stores the expansion outcome for one source file.
type CacheEntry struct {
	Metadata     fileMetadata
	Output       string
	Errors       []types.CompilationError
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache persists expansion results between runs. An entry is invalidated
// when the source file changes, when any registered rule file changes, or
// when it exceeds the maximum age.
type Cache struct {
	CacheDir   string
	entries    map[string]CacheEntry
	mutex      sync.RWMutex
	maxAge     time.Duration
	ruleFiles  []string
	ruleHashes map[string]string
}

// NewCache opens (or creates) a cache directory. ruleFiles are the rule
// definition files the cached results depend on.
func NewCache(cacheDir string, ruleFiles ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:   cacheDir,
		entries:    make(map[string]CacheEntry),
		maxAge:     DefaultCacheMaxAge,
		ruleFiles:  ruleFiles,
		ruleHashes: make(map[string]string),
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	if err := cache.updateRuleHashes(); err != nil {
		return nil, err
	}

	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil // no cache yet
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}

	return nil
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	return nil
}

// Set records the expansion result for res.Filename.
func (c *Cache) Set(res Result) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, _, err := getFileMetadata(res.Filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.entries[res.Filename] = CacheEntry{
		Metadata:     metadata,
		Output:       res.Output,
		Errors:       res.Errors,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}

	return c.save()
}

// Get returns the cached result for filename if it is still valid. The
// source lines are re-read from disk so diagnostics can render snippets.
func (c *Cache) Get(filename string) (Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return Result{}, false
	}

	metadata, content, err := getFileMetadata(filename)
	if err != nil || c.isEntryInvalid(entry, metadata) {
		delete(c.entries, filename)
		return Result{}, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return Result{
		Filename: filename,
		Output:   entry.Output,
		Errors:   entry.Errors,
		Source:   NewSourceCode(string(content)),
	}, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, current fileMetadata) bool {
	if time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	if current.Hash != entry.Metadata.Hash {
		return true
	}
	return c.haveRulesChanged()
}

func (c *Cache) haveRulesChanged() bool {
	for _, file := range c.ruleFiles {
		hash, err := getFileHash(file)
		if err != nil {
			return true
		}
		if hash != c.ruleHashes[file] {
			return true
		}
	}
	return false
}

func (c *Cache) updateRuleHashes() error {
	for _, file := range c.ruleFiles {
		hash, err := getFileHash(file)
		if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		c.ruleHashes[file] = hash
	}
	return nil
}

// SetMaxAge overrides the entry expiry age.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, best effort
}

func getFileMetadata(filename string) (fileMetadata, []byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fileMetadata{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return fileMetadata{}, nil, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", md5.Sum(content)),
		LastModified: info.ModTime(),
	}, content, nil
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
