package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rushteam/gamerec/core"
)

// 默认快照键位。上游应用把目录与交互的 JSON 快照写到这些 key，
// 训练与推理从同一份快照读取。
const (
	DefaultCatalogKey          = "games:catalog"
	DefaultInteractionsKey     = "interactions:all"
	DefaultUserInteractionsKey = "interactions:user" // 实际 key 为 {prefix}:{userID}
)

// ProviderAdapter 把 core.Store 适配为 core.DataProvider。
//
// 数据格式约定（JSON）：
//   - 目录：[]core.Game
//   - 全量交互：[]core.Interaction
//   - 单用户交互：[]core.Interaction，key 为 {UserInteractionsPrefix}:{userID}；
//     该 key 不存在时回退到全量交互并按 userID 过滤
type ProviderAdapter struct {
	Store core.Store

	CatalogKey             string
	InteractionsKey        string
	UserInteractionsPrefix string
}

// NewProviderAdapter 创建基于 Store 的数据提供器，使用默认键位。
func NewProviderAdapter(s core.Store) *ProviderAdapter {
	return &ProviderAdapter{
		Store:                  s,
		CatalogKey:             DefaultCatalogKey,
		InteractionsKey:        DefaultInteractionsKey,
		UserInteractionsPrefix: DefaultUserInteractionsKey,
	}
}

var _ core.DataProvider = (*ProviderAdapter)(nil)

// GetGames 读取目录快照。
func (a *ProviderAdapter) GetGames(ctx context.Context) ([]*core.Game, error) {
	key := a.CatalogKey
	if key == "" {
		key = DefaultCatalogKey
	}
	data, err := a.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store: load catalog %q: %w", key, err)
	}
	var games []*core.Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("store: parse catalog %q: %w", key, err)
	}
	return games, nil
}

// GetAllInteractions 读取全量交互快照。
func (a *ProviderAdapter) GetAllInteractions(ctx context.Context) ([]core.Interaction, error) {
	key := a.InteractionsKey
	if key == "" {
		key = DefaultInteractionsKey
	}
	data, err := a.Store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("store: load interactions %q: %w", key, err)
	}
	var interactions []core.Interaction
	if err := json.Unmarshal(data, &interactions); err != nil {
		return nil, fmt.Errorf("store: parse interactions %q: %w", key, err)
	}
	return interactions, nil
}

// GetUserInteractions 读取单用户交互。优先按用户维度 key 读取；
// key 不存在时回退到全量快照过滤，保证两种写入方式都可服务。
func (a *ProviderAdapter) GetUserInteractions(ctx context.Context, userID string) ([]core.Interaction, error) {
	prefix := a.UserInteractionsPrefix
	if prefix == "" {
		prefix = DefaultUserInteractionsKey
	}
	data, err := a.Store.Get(ctx, prefix+":"+userID)
	if err == nil {
		var interactions []core.Interaction
		if err := json.Unmarshal(data, &interactions); err != nil {
			return nil, fmt.Errorf("store: parse user interactions %q: %w", userID, err)
		}
		return interactions, nil
	}
	if !core.IsStoreNotFound(err) {
		return nil, err
	}

	all, err := a.GetAllInteractions(ctx)
	if core.IsStoreNotFound(err) {
		// 两级 key 都不存在视为该用户没有任何交互
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]core.Interaction, 0, 8)
	for _, inter := range all {
		if inter.UserID == userID {
			out = append(out, inter)
		}
	}
	return out, nil
}
