package feedback

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
)

// Hook 是挂在推荐 Pipeline 上的反馈采集钩子：
// 最终结果产出（postprocess 节点之后）时记录一次完整曝光。
type Hook struct {
	collector Collector
}

// NewHook 创建反馈 Hook。
func NewHook(collector Collector) *Hook {
	return &Hook{collector: collector}
}

func (h *Hook) BeforeNode(_ context.Context, _ *core.RecommendContext,
	_ pipeline.Node, items []*core.Item) ([]*core.Item, error) {
	return items, nil
}

// AfterNode 在 postprocess 节点成功产出后记录曝光。
// 采集失败不影响推荐结果，错误被静默吞掉。
func (h *Hook) AfterNode(ctx context.Context, rctx *core.RecommendContext,
	node pipeline.Node, items []*core.Item, err error) ([]*core.Item, error) {
	if err == nil && node.Kind() == pipeline.KindPostProcess && len(items) > 0 {
		_ = h.collector.RecordImpression(ctx, rctx, items)
	}
	return items, err
}
