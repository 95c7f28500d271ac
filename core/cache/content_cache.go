package cache

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"sync"
)

// ContentCache remembers the hash of the content tsfix last wrote to each
// file so watch mode can tell its own writes from edits.
type ContentCache struct {
	entries map[string]string
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache() *ContentCache {
	return &ContentCache{
		entries: make(map[string]string),
	}
}

// Record stores the hash of content as the last known state of filePath.
func (cc *ContentCache) Record(filePath, content string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	cc.entries[filePath] = hashString(content)
}

// Unchanged reports whether filePath still holds the recorded content. A file
// that was never recorded, or no longer exists, is reported as changed.
func (cc *ContentCache) Unchanged(filePath string) (bool, error) {
	cc.mutex.RLock()
	recorded, exists := cc.entries[filePath]
	cc.mutex.RUnlock()

	if !exists {
		cc.count(false)
		return false, nil
	}

	current, err := calculateFileHash(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			cc.Remove(filePath)
			cc.count(false)
			return false, nil
		}
		return false, fmt.Errorf("failed to calculate hash for %s: %w", filePath, err)
	}

	same := current == recorded
	cc.count(same)
	return same, nil
}

func (cc *ContentCache) Remove(filePath string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	delete(cc.entries, filePath)
}

// Stats returns hit and miss counts of Unchanged.
func (cc *ContentCache) Stats() (hits, misses int64) {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()
	return cc.stats.hits, cc.stats.misses
}

func (cc *ContentCache) count(hit bool) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	if hit {
		cc.stats.hits++
	} else {
		cc.stats.misses++
	}
}

func hashString(content string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(content)))
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
