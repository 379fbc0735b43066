package core

import "github.com/rushteam/gamerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：特征、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

const metaGame = "game"

// SetGame 把游戏元数据挂到 Item 上，供下游节点（排序、解释）读取。
func (it *Item) SetGame(g *Game) {
	if it.Meta == nil {
		it.Meta = make(map[string]any)
	}
	it.Meta[metaGame] = g
}

// Game 返回挂载的游戏元数据，未挂载时返回 nil。
func (it *Item) Game() *Game {
	if it.Meta == nil {
		return nil
	}
	g, _ := it.Meta[metaGame].(*Game)
	return g
}
