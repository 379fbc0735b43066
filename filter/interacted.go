package filter

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/index"
)

// InteractedFilter 是已交互过滤器：用户点过赞/收藏/玩过的游戏不再推荐。
//
// 已交互集合按优先级取自：
//  1. rctx.Profile（调用方从交互快照构建的画像，推荐路径默认来源）
//  2. Store（上游把已交互 ID 列表写到 {KeyPrefix}:{userID}）
//
// 交互记录里的游戏标识可能是规范 ID 也可能是 slug，匹配前先过 Resolver
// 归一，避免同一游戏因标识形态不同而漏过滤。
type InteractedFilter struct {
	// Resolver 别名归一器；为 nil 时按原始标识精确匹配
	Resolver *index.Resolver

	// Store 可选的已交互集合存储
	Store InteractedStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{userID}
	KeyPrefix string
}

// InteractedStore 是已交互集合的存储接口。
type InteractedStore interface {
	// GetInteractedGames 获取用户已交互的游戏 ID 列表
	GetInteractedGames(ctx context.Context, userID string, keyPrefix string) ([]string, error)
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	itemID := f.resolve(item.ID)

	if rctx.Profile != nil {
		for id := range rctx.Profile.Games {
			if f.resolve(id) == itemID {
				return true, nil
			}
		}
	}

	if f.Store != nil {
		keyPrefix := f.KeyPrefix
		if keyPrefix == "" {
			keyPrefix = "user:interacted"
		}
		ids, err := f.Store.GetInteractedGames(ctx, rctx.UserID, keyPrefix)
		if err == nil {
			for _, id := range ids {
				if f.resolve(id) == itemID {
					return true, nil
				}
			}
		}
	}

	return false, nil
}

func (f *InteractedFilter) resolve(id string) string {
	if f.Resolver == nil {
		return id
	}
	c, _ := f.Resolver.Resolve(id)
	return c
}
