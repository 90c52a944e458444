package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// CachedTextGenerator wraps a TextGenerator and remembers responses per
// prompt in a JSON file, so repeated prompts never reach the model twice.
type CachedTextGenerator struct {
	realGen       TextGenerator
	cache         map[string]string
	cacheFilePath string
	mu            sync.Mutex
}

// NewCachedTextGenerator creates a CachedTextGenerator, loading any cache
// already present at cacheFilePath.
func NewCachedTextGenerator(realGen TextGenerator, cacheFilePath string) (*CachedTextGenerator, error) {
	c := &CachedTextGenerator{
		realGen:       realGen,
		cache:         make(map[string]string),
		cacheFilePath: cacheFilePath,
	}

	cacheDir := filepath.Dir(cacheFilePath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
	}

	data, err := os.ReadFile(cacheFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Cache file not found, starting with empty cache: %s", cacheFilePath)
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", cacheFilePath, err)
	}

	if err := json.Unmarshal(data, &c.cache); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data from %s: %w", cacheFilePath, err)
	}

	log.Printf("Loaded %d cached responses from %s", len(c.cache), cacheFilePath)
	return c, nil
}

// GenerateContent answers from the cache when it can. A cache hit reports
// zero token usage.
func (c *CachedTextGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if content, ok := c.cache[prompt]; ok {
		return ContentResponse{Content: content}, nil
	}

	resp, err := c.realGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content using real generator: %w", err)
	}

	c.cache[prompt] = resp.Content
	return resp, nil
}

// Len returns the number of cached prompts.
func (c *CachedTextGenerator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// SaveCache persists the in-memory cache to the file system.
func (c *CachedTextGenerator) SaveCache() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := os.WriteFile(c.cacheFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", c.cacheFilePath, err)
	}

	log.Printf("Saved %d cached responses to %s", len(c.cache), c.cacheFilePath)
	return nil
}

// Close saves the cache and closes the wrapped generator when it holds
// resources.
func (c *CachedTextGenerator) Close() error {
	if err := c.SaveCache(); err != nil {
		return err
	}
	if closer, ok := c.realGen.(Closer); ok {
		return closer.Close()
	}
	return nil
}
