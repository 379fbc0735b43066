package feature

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feast"
	"github.com/rushteam/gamerec/pkg/conv"
)

// 标量特征的标准字段名。EnrichNode 按这些 key 回填游戏记录。
const (
	FeatureRating     = "rating"
	FeatureMetacritic = "metacritic"
	FeaturePlaytime   = "playtime"
)

// Provider 是游戏标量特征的在线获取接口。
//
// 目录快照中 rating/metacritic/playtime 可能缺失（上游元数据 API 的
// 响应不完整），Provider 提供第二数据源在推理前回填。
//
// 实现：
//   - StoreProvider：从 core.KeyValueStore 的 Hash 读取（离线任务预写入）
//   - FeastProvider：从 Feast Feature Store 在线读取
//   - CachedProvider / FallbackProvider：装饰器（见 cache.go / fallback.go）
type Provider interface {
	// GetGameFeatures 获取单个游戏的标量特征
	GetGameFeatures(ctx context.Context, gameID string) (map[string]float64, error)

	// BatchGetGameFeatures 批量获取（推荐系统常用，减少网络往返）
	BatchGetGameFeatures(ctx context.Context, gameIDs []string) (map[string]map[string]float64, error)
}

// StoreProvider 从 KeyValueStore 读取游戏特征。
// Hash key 为 HashKey（默认 "features:game"），field 为游戏 ID，
// value 为 JSON 编码的 map[string]float64。
type StoreProvider struct {
	Store   core.KeyValueStore
	HashKey string
}

func NewStoreProvider(store core.KeyValueStore) *StoreProvider {
	return &StoreProvider{Store: store, HashKey: "features:game"}
}

var _ Provider = (*StoreProvider)(nil)

func (p *StoreProvider) GetGameFeatures(ctx context.Context, gameID string) (map[string]float64, error) {
	key := p.HashKey
	if key == "" {
		key = "features:game"
	}
	data, err := p.Store.HGet(ctx, key, gameID)
	if err != nil {
		return nil, err
	}
	var features map[string]float64
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("feature: parse features for %q: %w", gameID, err)
	}
	return features, nil
}

func (p *StoreProvider) BatchGetGameFeatures(ctx context.Context, gameIDs []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(gameIDs))
	for _, id := range gameIDs {
		features, err := p.GetGameFeatures(ctx, id)
		if err != nil {
			// 单个缺失不影响批量结果
			continue
		}
		out[id] = features
	}
	return out, nil
}

// FeastProvider 从 Feast Feature Store 在线读取游戏特征。
//
// 特征视图约定：entity 为 EntityKey（默认 "game_id"），特征名形如
// "game_stats:rating"；返回 map 的 key 取冒号后的短名。
type FeastProvider struct {
	Client    feast.Client
	Features  []string // 形如 "game_stats:rating"
	EntityKey string   // 默认 "game_id"
}

func NewFeastProvider(client feast.Client, features []string) *FeastProvider {
	return &FeastProvider{
		Client:    client,
		Features:  features,
		EntityKey: "game_id",
	}
}

var _ Provider = (*FeastProvider)(nil)

func (p *FeastProvider) GetGameFeatures(ctx context.Context, gameID string) (map[string]float64, error) {
	batch, err := p.BatchGetGameFeatures(ctx, []string{gameID})
	if err != nil {
		return nil, err
	}
	features, ok := batch[gameID]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return features, nil
}

func (p *FeastProvider) BatchGetGameFeatures(ctx context.Context, gameIDs []string) (map[string]map[string]float64, error) {
	if len(gameIDs) == 0 {
		return map[string]map[string]float64{}, nil
	}
	entityKey := p.EntityKey
	if entityKey == "" {
		entityKey = "game_id"
	}
	rows := make([]map[string]interface{}, 0, len(gameIDs))
	for _, id := range gameIDs {
		rows = append(rows, map[string]interface{}{entityKey: id})
	}

	resp, err := p.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   p.Features,
		EntityRows: rows,
	})
	if err != nil {
		return nil, fmt.Errorf("feature: feast online features: %w", err)
	}

	out := make(map[string]map[string]float64, len(gameIDs))
	for i, fv := range resp.FeatureVectors {
		if i >= len(gameIDs) {
			break
		}
		features := make(map[string]float64, len(fv.Values))
		for name, raw := range fv.Values {
			if v, ok := conv.ToFloat64(raw); ok {
				features[shortFeatureName(name)] = v
			}
		}
		out[gameIDs[i]] = features
	}
	return out, nil
}

// shortFeatureName 把 "game_stats:rating" 裁剪为 "rating"。
func shortFeatureName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == ':' {
			return name[i+1:]
		}
	}
	return name
}
