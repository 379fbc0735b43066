package index

import "github.com/rushteam/gamerec/core"

// Resolver 把游戏的各种原始标识（规范 ID、slug 别名）归一为规范 ID。
//
// 交互记录引用游戏时既可能写 ID 也可能写 slug；如果不先归一，
// 同一游戏会在下标空间里分裂成两个实体，交互排除也会漏判。
// 所有进入 Index 的查找都应先过 Resolver。
type Resolver struct {
	canonical map[string]string
}

// NewResolver 创建空解析器。
func NewResolver() *Resolver {
	return &Resolver{canonical: make(map[string]string)}
}

// ResolverForGames 从目录快照构建解析器：每个游戏登记 ID 与 slug 两个入口。
func ResolverForGames(games []*core.Game) *Resolver {
	r := NewResolver()
	for _, g := range games {
		if g == nil || g.ID == "" {
			continue
		}
		r.Add(g.ID, g.Slug)
	}
	return r
}

// Add 登记一个规范 ID 及其别名。别名已被其他游戏占用时保留先登记者。
func (r *Resolver) Add(canonicalID string, aliases ...string) {
	if canonicalID == "" {
		return
	}
	if _, ok := r.canonical[canonicalID]; !ok {
		r.canonical[canonicalID] = canonicalID
	}
	for _, alias := range aliases {
		if alias == "" || alias == canonicalID {
			continue
		}
		if _, ok := r.canonical[alias]; !ok {
			r.canonical[alias] = canonicalID
		}
	}
}

// Resolve 将任意标识归一为规范 ID；未登记的标识返回 (原值, false)。
func (r *Resolver) Resolve(id string) (string, bool) {
	if c, ok := r.canonical[id]; ok {
		return c, true
	}
	return id, false
}

// ResolveIndex 先归一再查下标，是进入稠密空间的标准入口。
func (r *Resolver) ResolveIndex(ix *Index, id string) (int, bool) {
	c, _ := r.Resolve(id)
	return ix.IndexOf(c)
}
