package recall

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// Popularity 是人气召回源，按 rating × playtime 从高到低产出候选。
//   - 如果 Store 实现了 KeyValueStore，优先使用 ZRange（有序集合，离线任务预计算分数）
//   - 否则从普通 key 读取 JSON 数组（游戏 ID 列表，已按人气排好）
//   - Store 读不到时，从目录快照在内存中现算排名
//
// 排序键是 rating × playtime，但 Item.Score 只取 rating/5：
// 对外报告的分数口径与个性化打分保持同一 [0,1] 区间。
// Popularity 同时实现 Source 和 Node 接口。
type Popularity struct {
	Store core.Store
	Key   string // 存储 key，例如 "popular:games"

	Provider core.GameProvider
	Games    []*core.Game

	// Limit 召回数量上限，<=0 表示不截断
	Limit int
}

func (r *Popularity) Name() string        { return "recall.popularity" }
func (r *Popularity) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Popularity) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Popularity) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	games := r.Games
	if r.Provider != nil {
		loaded, err := r.Provider.GetGames(ctx)
		if err == nil {
			games = loaded
		}
	}
	lookup := core.GameLookup(games)

	// 优先从 Store 读取预计算的人气列表
	if r.Store != nil && r.Key != "" {
		if ids := r.loadFromStore(ctx); len(ids) > 0 {
			return r.materialize(ids, lookup), nil
		}
	}

	// 内存兜底：现算 rating × playtime 排名
	ranked := RankByPopularity(games, r.Limit)
	out := make([]*core.Item, 0, len(ranked))
	for _, g := range ranked {
		out = append(out, r.newItem(g))
	}
	return out, nil
}

func (r *Popularity) loadFromStore(ctx context.Context) []string {
	stop := int64(99)
	if r.Limit > 0 {
		stop = int64(r.Limit) - 1
	}
	if kv, ok := r.Store.(core.KeyValueStore); ok {
		members, err := kv.ZRange(ctx, r.Key, 0, stop)
		if err == nil && len(members) > 0 {
			return members
		}
	}
	data, err := r.Store.Get(ctx, r.Key)
	if err != nil {
		return nil
	}
	var ids []string
	if json.Unmarshal(data, &ids) != nil {
		return nil
	}
	if r.Limit > 0 && len(ids) > r.Limit {
		ids = ids[:r.Limit]
	}
	return ids
}

func (r *Popularity) materialize(ids []string, lookup map[string]*core.Game) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		g := lookup[id]
		if g == nil {
			g = &core.Game{ID: id}
		}
		out = append(out, r.newItem(g))
	}
	return out
}

func (r *Popularity) newItem(g *core.Game) *core.Item {
	it := core.NewItem(g.ID)
	it.SetGame(g)
	it.Score = PopularityScore(g)
	it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
	return it
}

// RankByPopularity 按 rating × playtime 降序排列目录，limit <= 0 表示不截断。
// 数值缺失按 0 处理；排序键相同按 ID 排序保证稳定。
func RankByPopularity(games []*core.Game, limit int) []*core.Game {
	ranked := make([]*core.Game, 0, len(games))
	for _, g := range games {
		if g == nil || g.ID == "" {
			continue
		}
		ranked = append(ranked, g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ki, kj := popularityKey(ranked[i]), popularityKey(ranked[j])
		if ki != kj {
			return ki > kj
		}
		return ranked[i].ID < ranked[j].ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// PopularityScore 返回对外报告的人气分数：rating/5，缺失按 0。
func PopularityScore(g *core.Game) float64 {
	if g == nil || g.Rating == nil {
		return 0
	}
	return *g.Rating / 5.0
}

func popularityKey(g *core.Game) float64 {
	if g == nil || g.Rating == nil || g.Playtime == nil {
		return 0
	}
	return *g.Rating * *g.Playtime
}
