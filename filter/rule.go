package filter

import (
	"context"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/dsl"
)

// RuleFilter 是规则过滤器，使用 DSL 表达式（CEL）驱动候选排除。
// 表达式为真时保留，为假时过滤；求值出错时保留（规则失效宁可多推不误杀）。
//
// 示例：
//   - `game.rating == null || game.rating >= 3.0` → 剔除低分游戏
//   - `!("Casino" in game.genres)` → 剔除某类题材
type RuleFilter struct {
	program *dsl.Program
}

// NewRuleFilter 编译表达式并创建规则过滤器。空表达式恒保留。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{program: prg}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := f.program.Evaluate(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
