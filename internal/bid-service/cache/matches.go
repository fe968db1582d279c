package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// hash único com todas as listagens; invalidar = apagar a chave
const matchesKey = "fixtures:matches"

// RedisMatches guarda listagens de partidas num hash do Redis com TTL
// Client: cliente Redis
// TTL: expiração do hash inteiro, renovada a cada escrita
type RedisMatches struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMatches(c *redis.Client, ttl time.Duration) *RedisMatches {
	return &RedisMatches{Client: c, TTL: ttl}
}

func (r *RedisMatches) GetMatches(ctx context.Context, key string) ([]ledger.Match, bool, error) {
	b, err := r.Client.HGet(ctx, matchesKey, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var ms []ledger.Match
	if err := json.Unmarshal(b, &ms); err != nil {
		return nil, false, err
	}
	return ms, true, nil
}

func (r *RedisMatches) SetMatches(ctx context.Context, key string, ms []ledger.Match) error {
	b, err := json.Marshal(ms)
	if err != nil {
		return err
	}
	pipe := r.Client.TxPipeline()
	pipe.HSet(ctx, matchesKey, key, b)
	pipe.Expire(ctx, matchesKey, r.TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisMatches) Invalidate(ctx context.Context) error {
	return r.Client.Del(ctx, matchesKey).Err()
}

// LocalMatches é o fallback em memória quando REDIS_ADDR não está configurado
type LocalMatches struct {
	lru *expirable.LRU[string, []ledger.Match]
}

func NewLocalMatches(size int, ttl time.Duration) *LocalMatches {
	return &LocalMatches{lru: expirable.NewLRU[string, []ledger.Match](size, nil, ttl)}
}

func (l *LocalMatches) GetMatches(_ context.Context, key string) ([]ledger.Match, bool, error) {
	ms, ok := l.lru.Get(key)
	return ms, ok, nil
}

func (l *LocalMatches) SetMatches(_ context.Context, key string, ms []ledger.Match) error {
	l.lru.Add(key, ms)
	return nil
}

func (l *LocalMatches) Invalidate(context.Context) error {
	l.lru.Purge()
	return nil
}
