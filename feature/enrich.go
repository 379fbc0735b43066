package feature

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// EnrichNode 是特征注入节点：候选游戏的标量字段（rating/metacritic/playtime）
// 缺失时，从 Provider 回填后再进入编码与打分。
//
// 目录快照本身完整时此节点是空操作；Provider 为 nil 时节点直接透传。
// 回填只补缺失字段，快照中已有的值优先。
type EnrichNode struct {
	Provider Provider
}

func (n *EnrichNode) Name() string {
	return "feature.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Provider == nil || len(items) == 0 {
		return items, nil
	}

	// 只为有缺失字段的游戏发起批量查询
	missing := make([]string, 0, len(items))
	byID := make(map[string]*core.Game, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		g := it.Game()
		if g == nil || g.ID == "" {
			continue
		}
		if g.Rating != nil && g.Metacritic != nil && g.Playtime != nil {
			continue
		}
		if _, seen := byID[g.ID]; !seen {
			byID[g.ID] = g
			missing = append(missing, g.ID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}

	fetched, err := n.Provider.BatchGetGameFeatures(ctx, missing)
	if err != nil {
		// 特征后端故障不中断推荐，缺失字段由编码器的中性默认值兜底
		return items, nil
	}

	for id, features := range fetched {
		g := byID[id]
		if g == nil {
			continue
		}
		if g.Rating == nil {
			if v, ok := features[FeatureRating]; ok {
				g.Rating = &v
			}
		}
		if g.Metacritic == nil {
			if v, ok := features[FeatureMetacritic]; ok {
				g.Metacritic = &v
			}
		}
		if g.Playtime == nil {
			if v, ok := features[FeaturePlaytime]; ok {
				g.Playtime = &v
			}
		}
	}
	return items, nil
}
