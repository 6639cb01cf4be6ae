package common

import (
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Entry is a cached value together with the time it was stored. Entries are
// never mutated in place; a refresh replaces the entry wholesale.
type Entry struct {
	Data      any
	Timestamp time.Time
}

// Cache stores entries without an expiry so that stale data stays available
// as a fallback when an upstream refresh fails. Freshness is judged by the
// reader via Fresh.
type Cache struct {
	store *cache.Cache
}

func NewCache() *Cache {
	return &Cache{store: cache.New(cache.NoExpiration, 0)}
}

func (c *Cache) Set(key string, data any) {
	c.store.Set(key, Entry{Data: data, Timestamp: time.Now()}, cache.NoExpiration)
}

// Get returns the entry for the key regardless of its age.
func (c *Cache) Get(key string) (Entry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Fresh returns the entry for the key only if it is younger than ttl.
func (c *Cache) Fresh(key string, ttl time.Duration) (Entry, bool) {
	entry, ok := c.Get(key)
	if !ok || time.Since(entry.Timestamp) >= ttl {
		return Entry{}, false
	}
	return entry, true
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for k := range c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
}

func (c *Cache) Flush() {
	c.store.Flush()
}

func CacheKeyPosts(perPage, page int, filter string) string {
	return "posts:" + strconv.Itoa(perPage) + ":" + strconv.Itoa(page) + ":" + filter
}

func CacheKeyPost(slug string) string {
	return "posts:slug:" + slug
}

func CacheKeyCourses(perPage, page int, category string) string {
	return "courses:" + strconv.Itoa(perPage) + ":" + strconv.Itoa(page) + ":" + category
}

func CacheKeyCourse(slug string) string {
	return "courses:slug:" + slug
}

func CacheKeyTrainers() string {
	return "trainers:all"
}

func CacheKeyTrainer(slug string) string {
	return "trainers:slug:" + slug
}

func CacheKeyTrainerByID(id int) string {
	return "trainers:id:" + strconv.Itoa(id)
}

func CacheKeyGallery(perPage, page int, category string) string {
	return "gallery:" + strconv.Itoa(perPage) + ":" + strconv.Itoa(page) + ":" + category
}

func CacheKeyCategories() string {
	return "categories:all"
}
