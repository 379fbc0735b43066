package rank

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/index"
	"github.com/rushteam/gamerec/model"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// ModelNode 是使用打分模型的排序 Node。
//
// 对每个候选：解析游戏的稠密下标 → 编码内容特征 → 前向打分。
// 游戏不在训练映射中（训练后上架的新游戏）或单个候选打分出错时，
// 跳过该候选而不是中断整批——推荐是软功能，宁缺毋断。
//
// 进入此节点前调用方必须确认用户下标有效；用户未知属于冷启动，
// 由引擎层分流，不在排序节点处理。
type ModelNode struct {
	Scorer   model.Scorer
	Vocab    *feature.Vocabulary
	Games    *index.Index
	Resolver *index.Resolver

	// UserIdx 目标用户的稠密下标，由引擎在组装链路时注入
	UserIdx int

	// Parallel 并发打分上限；<=1 时串行。前向传播无共享状态，
	// 候选间可安全并行，结果按输入位置写回保证确定性。
	Parallel int
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Scorer == nil || n.Vocab == nil || n.Games == nil || len(items) == 0 {
		return items, nil
	}

	kept := make([]bool, len(items))
	if n.Parallel > 1 && len(items) > 1 {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(n.Parallel)
		for i, it := range items {
			i, it := i, it
			g.Go(func() error {
				kept[i] = n.scoreOne(it)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, it := range items {
			kept[i] = n.scoreOne(it)
		}
	}

	out := make([]*core.Item, 0, len(items))
	for i, it := range items {
		if kept[i] {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// scoreOne 为单个候选打分并写入标签；候选无法打分时返回 false。
func (n *ModelNode) scoreOne(it *core.Item) bool {
	if it == nil {
		return false
	}
	gameIdx, ok := n.gameIndex(it.ID)
	if !ok {
		return false
	}
	score, err := n.Scorer.Score(n.UserIdx, gameIdx, n.Vocab.Encode(it.Game()))
	if err != nil {
		return false
	}
	it.Score = score
	it.PutLabel("rank_model", utils.Label{Value: n.Scorer.Name(), Source: "rank"})
	return true
}

func (n *ModelNode) gameIndex(id string) (int, bool) {
	if n.Resolver != nil {
		return n.Resolver.ResolveIndex(n.Games, id)
	}
	return n.Games.IndexOf(id)
}
