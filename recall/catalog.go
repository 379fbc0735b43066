package recall

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// Catalog 是全量目录召回源：把目录快照中的每个游戏变成一个候选 Item。
// 候选集 = 全量目录，交互排除交给下游过滤节点。
//
// 目录来源二选一：
//   - Provider：每次召回时拉取最新快照
//   - Games：调用方注入的固定快照（训练/测试常用）
//
// Catalog 同时实现 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Catalog struct {
	Provider core.GameProvider
	Games    []*core.Game
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。每个 Item 挂载对应的游戏元数据，
// 供下游编码、打分与解释节点读取。
func (r *Catalog) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	games := r.Games
	if r.Provider != nil {
		loaded, err := r.Provider.GetGames(ctx)
		if err != nil {
			return nil, err
		}
		games = loaded
	}

	out := make([]*core.Item, 0, len(games))
	for _, g := range games {
		if g == nil || g.ID == "" {
			continue
		}
		it := core.NewItem(g.ID)
		it.SetGame(g)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
