package feature

import (
	"context"
	"sync"
	"time"
)

// CachedProvider 是 Provider 的内存 TTL 缓存装饰器。
// 游戏标量特征更新频率低（天级），请求级缓存能省掉绝大多数后端往返。
type CachedProvider struct {
	next Provider
	ttl  time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	features map[string]float64
	expireAt time.Time
}

// NewCachedProvider 创建缓存装饰器，ttl <= 0 时取 5 分钟。
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProvider{
		next:  next,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

var _ Provider = (*CachedProvider)(nil)

func (p *CachedProvider) GetGameFeatures(ctx context.Context, gameID string) (map[string]float64, error) {
	if features, ok := p.lookup(gameID); ok {
		return features, nil
	}
	features, err := p.next.GetGameFeatures(ctx, gameID)
	if err != nil {
		return nil, err
	}
	p.put(gameID, features)
	return features, nil
}

func (p *CachedProvider) BatchGetGameFeatures(ctx context.Context, gameIDs []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(gameIDs))
	missing := make([]string, 0, len(gameIDs))
	for _, id := range gameIDs {
		if features, ok := p.lookup(id); ok {
			out[id] = features
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := p.next.BatchGetGameFeatures(ctx, missing)
	if err != nil {
		if len(out) > 0 {
			// 缓存命中的部分仍然可用
			return out, nil
		}
		return nil, err
	}
	for id, features := range fetched {
		p.put(id, features)
		out[id] = features
	}
	return out, nil
}

func (p *CachedProvider) lookup(gameID string) (map[string]float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.cache[gameID]
	if !ok || time.Now().After(e.expireAt) {
		return nil, false
	}
	return e.features, true
}

func (p *CachedProvider) put(gameID string, features map[string]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache[gameID] = cacheEntry{features: features, expireAt: time.Now().Add(p.ttl)}
}
