package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/gamerec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

var (
	_ BlacklistStore  = (*StoreAdapter)(nil)
	_ InteractedStore = (*StoreAdapter)(nil)
)

// GetBlacklist 从 Store 读取黑名单（JSON 数组）。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// GetInteractedGames 从 Store 读取用户已交互游戏列表，key 为 {keyPrefix}:{userID}。
func (a *StoreAdapter) GetInteractedGames(ctx context.Context, userID string, keyPrefix string) ([]string, error) {
	return a.GetBlacklist(ctx, keyPrefix+":"+userID)
}
