package recommend

import (
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/recall"
)

// PopularityRank 是非个性化的人气兜底：按 rating × playtime 降序排列目录，
// 取前 limit 个，对外报告的分数是 rating/5。
//
// 个性化不可用的所有场景（无交互、产物加载失败、用户未知、打分出错、
// 模型产出空列表）都落到这里。只要目录非空就一定有结果。
func PopularityRank(games []*core.Game, limit int) []core.Recommendation {
	ranked := recall.RankByPopularity(games, limit)
	out := make([]core.Recommendation, 0, len(ranked))
	for _, g := range ranked {
		out = append(out, core.Recommendation{
			GameID: g.ID,
			Score:  recall.PopularityScore(g),
			Reason: core.ReasonPopular,
		})
	}
	return out
}
