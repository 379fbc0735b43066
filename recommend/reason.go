package recommend

import (
	"context"
	"strings"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

// ReasonNode 是推荐理由标注节点（postprocess）。
//
// 文案规则：游戏有题材时取前两个拼成 "Similar genres: A, B"，
// 否则使用通用文案 "Based on your preferences"。
// 理由写进 item 的 "reason" Label，由引擎转换结果时读取。
type ReasonNode struct{}

func (n *ReasonNode) Name() string        { return "postprocess.reason" }
func (n *ReasonNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *ReasonNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	for _, it := range items {
		if it == nil {
			continue
		}
		it.PutLabel("reason", utils.Label{
			Value:  ReasonFor(it.Game()),
			Source: "postprocess",
		})
	}
	return items, nil
}

// ReasonFor 生成单个游戏的推荐理由文案。
func ReasonFor(g *core.Game) string {
	if g == nil || len(g.Genres) == 0 {
		return core.ReasonPreferences
	}
	genres := g.Genres
	if len(genres) > 2 {
		genres = genres[:2]
	}
	return core.ReasonGenrePrefix + strings.Join(genres, ", ")
}
