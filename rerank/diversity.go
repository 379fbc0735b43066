package rerank

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// Diversity 是一个简单的多样性 ReRank：按题材去重（每个题材保留首个出现的游戏）。
// 题材来源优先级：
// - meta 中挂载的游戏记录的首个题材
// - label[LabelKey].Value
type Diversity struct {
	LabelKey string // 默认 "genre"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "genre"
	}

	seen := make(map[string]bool, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		genre := ""
		if g := it.Game(); g != nil && len(g.Genres) > 0 {
			genre = g.Genres[0]
		}
		if genre == "" && it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				genre = lbl.Value
			}
		}

		// 没有题材信息的不参与去重
		if genre == "" {
			out = append(out, it)
			continue
		}
		if seen[genre] {
			continue
		}
		seen[genre] = true
		out = append(out, it)
	}

	return out, nil
}
