package feature

import (
	"context"
)

// FallbackProvider 是 Provider 的兜底装饰器：后端读取失败或缺失时
// 返回预置默认值，保证特征注入节点永不因特征后端故障而中断。
type FallbackProvider struct {
	next Provider

	// Defaults 兜底特征值；nil 时返回空 map
	Defaults map[string]float64
}

func NewFallbackProvider(next Provider, defaults map[string]float64) *FallbackProvider {
	return &FallbackProvider{next: next, Defaults: defaults}
}

var _ Provider = (*FallbackProvider)(nil)

func (p *FallbackProvider) GetGameFeatures(ctx context.Context, gameID string) (map[string]float64, error) {
	features, err := p.next.GetGameFeatures(ctx, gameID)
	if err != nil || len(features) == 0 {
		return p.defaults(), nil
	}
	return features, nil
}

func (p *FallbackProvider) BatchGetGameFeatures(ctx context.Context, gameIDs []string) (map[string]map[string]float64, error) {
	fetched, err := p.next.BatchGetGameFeatures(ctx, gameIDs)
	if err != nil {
		fetched = nil
	}
	out := make(map[string]map[string]float64, len(gameIDs))
	for _, id := range gameIDs {
		if features, ok := fetched[id]; ok && len(features) > 0 {
			out[id] = features
		} else {
			out[id] = p.defaults()
		}
	}
	return out, nil
}

func (p *FallbackProvider) defaults() map[string]float64 {
	out := make(map[string]float64, len(p.Defaults))
	for k, v := range p.Defaults {
		out[k] = v
	}
	return out
}
