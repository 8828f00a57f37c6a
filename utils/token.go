package utils

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenBlacklist keeps revoked tokens until they would have expired anyway.
type TokenBlacklist struct {
	store *cache.Cache
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{store: cache.New(24*time.Hour, time.Hour)}
}

func (b *TokenBlacklist) Add(token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	b.store.Set(token, struct{}{}, ttl)
}

func (b *TokenBlacklist) Contains(token string) bool {
	_, found := b.store.Get(token)
	return found
}
