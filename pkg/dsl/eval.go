package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/gamerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// 定义变量类型
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("game", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次、对任意多个 Item 求值，适合放在过滤节点的热路径上。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "popularity" / label.rank_model != "dnn"
//   - 数值：item.score > 0.7 / game.rating >= 4.0
//   - 逻辑：game.metacritic >= 80 && item.score > 0.5
//   - 存在性：game.rating != null
//   - 包含："Action" in game.genres / label.recall_source.contains("catalog")
//
// 示例：
//   - `"Indie" in game.genres` → 题材含 Indie
//   - `game.rating != null && game.rating >= 4.0` → 评分存在且不低于 4 分
//   - `label.recall_source.contains("popularity")` → 召回来源包含 popularity
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译 DSL 表达式。空表达式合法，求值恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env error: %v", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本（用于日志）。
func (p *Program) Expr() string {
	return p.expr
}

// Evaluate 对一个 Item 执行表达式，返回布尔结果。
//
// 注意：CEL 访问不存在的 key 会报错，用 label.key != null 检查存在性
// （has(label.key) 可以用 label.key != null 替代）。
func (p *Program) Evaluate(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// Evaluate 一次性编译并执行表达式，适合低频调用；热路径请用 Compile。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	prg, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return prg.Evaluate(item, rctx)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	// 构建 label map
	labels := make(map[string]interface{})
	for k, v := range item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
	}

	// 构建 item map
	itemInput := map[string]interface{}{
		"id":       item.ID,
		"score":    item.Score,
		"features": item.Features,
		"labels":   labels,
	}

	// 构建 game map；缺失字段映射为 null，表达式可用 != null 判断
	var game map[string]interface{}
	if g := item.Game(); g != nil {
		game = map[string]interface{}{
			"id":         g.ID,
			"slug":       g.Slug,
			"name":       g.Name,
			"genres":     []string(g.Genres),
			"tags":       []string(g.Tags),
			"platforms":  []string(g.Platforms),
			"rating":     floatOrNil(g.Rating),
			"metacritic": floatOrNil(g.Metacritic),
			"playtime":   floatOrNil(g.Playtime),
			"released":   g.Released,
		}
	}

	// 构建 rctx map
	rctxInput := map[string]interface{}{}
	if rctx != nil {
		rctxInput["user_id"] = rctx.UserID
		rctxInput["scene"] = rctx.Scene
		rctxInput["params"] = rctx.Params
	}

	// label 作为顶层访问器，label.recall_source 直接取 value
	labelAccessor := make(map[string]interface{})
	for k, v := range labels {
		labelAccessor[k] = v.(map[string]interface{})["value"]
	}

	return map[string]interface{}{
		"item":  itemInput,
		"label": labelAccessor,
		"game":  game,
		"rctx":  rctxInput,
	}
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
