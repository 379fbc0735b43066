package pipeline

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// Hook 在每个 Node 执行前后被调用，用于观测、埋点、反馈采集。
// BeforeNode/AfterNode 可以改写 items（返回新切片即可），返回 error 会中断整条链路。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item) ([]*core.Item, error)
	AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, err error) ([]*core.Item, error)
}

// Pipeline 是推荐链路的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// Nodes 按声明顺序串行执行；Hooks 挂在每个 Node 前后。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		var err error
		for _, h := range p.Hooks {
			cur, err = h.BeforeNode(ctx, rctx, node, cur)
			if err != nil {
				return nil, err
			}
		}

		next, err := node.Process(ctx, rctx, cur)

		for _, h := range p.Hooks {
			next, err = h.AfterNode(ctx, rctx, node, next, err)
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
