package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structurtes to allow for clearing all caches of a certain type
// If you're reading this and you know a better way to do this, please let me know!
var (
	Cache             *ristretto.Cache
	CategoryCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	TransactionCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Category Cache Functions
func SetCategoryCache(cacheKey string, value interface{}) {
	CategoryCacheKeys.Lock()
	CategoryCacheKeys.m[cacheKey] = struct{}{}
	CategoryCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelCategoryCache(cacheKey string) {
	CategoryCacheKeys.Lock()
	delete(CategoryCacheKeys.m, cacheKey)
	CategoryCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllCategoryCaches() {
	CategoryCacheKeys.Lock()
	for key := range CategoryCacheKeys.m {
		Cache.Del(key)
	}
	CategoryCacheKeys.m = make(map[string]struct{})
	CategoryCacheKeys.Unlock()
}

// Transaction Cache Functions
func SetTransactionCache(cacheKey string, value interface{}) {
	TransactionCacheKeys.Lock()
	TransactionCacheKeys.m[cacheKey] = struct{}{}
	TransactionCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelTransactionCache(cacheKey string) {
	TransactionCacheKeys.Lock()
	delete(TransactionCacheKeys.m, cacheKey)
	TransactionCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllTransactionCaches() {
	TransactionCacheKeys.Lock()
	for key := range TransactionCacheKeys.m {
		Cache.Del(key)
	}
	TransactionCacheKeys.m = make(map[string]struct{})
	TransactionCacheKeys.Unlock()
}
