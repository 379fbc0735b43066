package core

import (
	"sort"
	"time"
)

// UserProfile 是用户交互画像。
//
// 一句话定义：用户画像 = 推荐 Pipeline 的"全局上下文 + 决策信号"
//
// 它不是某一个 Node，而是：
//   - 被所有 Node 共享（过滤节点用它排除已交互游戏）
//   - 驱动引擎的路径决策（有交互走模型，无交互走冷启动）
//
// 设计要点：
//
//	维度          作用
//	已交互集合    候选过滤 / 负采样排除
//	行为计数      路径决策（是否冷启动）
//	题材偏好      推荐解释
type UserProfile struct {
	UserID string

	// Games 是已交互游戏的 ID 集合。构建时若能在目录中找到对应游戏
	// （按 ID 或 slug），存规范 ID；找不到时保留原始标识。
	Games map[string]struct{}

	// ActionCounts 各行为类型的次数统计
	ActionCounts map[ActionKind]int

	// GenreAffinity 从已交互游戏聚合的题材偏好计数
	GenreAffinity map[string]float64

	UpdatedAt time.Time
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:        userID,
		Games:         make(map[string]struct{}),
		ActionCounts:  make(map[ActionKind]int),
		GenreAffinity: make(map[string]float64),
		UpdatedAt:     time.Now(),
	}
}

// BuildUserProfile 从交互快照构建画像。
// games 提供目录快照用于别名归一与题材聚合，可以为 nil。
func BuildUserProfile(userID string, interactions []Interaction, games []*Game) *UserProfile {
	p := NewUserProfile(userID)
	lookup := GameLookup(games)
	for _, inter := range interactions {
		if inter.UserID != userID {
			continue
		}
		p.Observe(inter, lookup[inter.GameID])
	}
	return p
}

// Observe 吸收一条交互记录。g 是该交互指向的游戏，查不到时传 nil。
func (p *UserProfile) Observe(inter Interaction, g *Game) {
	if p.Games == nil {
		p.Games = make(map[string]struct{})
	}
	if p.ActionCounts == nil {
		p.ActionCounts = make(map[ActionKind]int)
	}
	if p.GenreAffinity == nil {
		p.GenreAffinity = make(map[string]float64)
	}

	id := inter.GameID
	if g != nil && g.ID != "" {
		id = g.ID
	}
	p.Games[id] = struct{}{}
	p.ActionCounts[inter.Action]++
	if g != nil {
		for _, genre := range g.Genres {
			p.GenreAffinity[genre] += inter.Action.Weight()
		}
	}
	p.UpdatedAt = time.Now()
}

// InteractionCount 返回观察到的交互总数。
func (p *UserProfile) InteractionCount() int {
	total := 0
	for _, n := range p.ActionCounts {
		total += n
	}
	return total
}

// HasInteractions 判断用户是否有任何交互记录（引擎以此决定是否冷启动）。
func (p *UserProfile) HasInteractions() bool {
	return p.InteractionCount() > 0
}

// HasInteracted 检查用户是否与某个游戏交互过。
func (p *UserProfile) HasInteracted(gameID string) bool {
	if p.Games == nil {
		return false
	}
	_, ok := p.Games[gameID]
	return ok
}

// TopGenres 返回偏好计数最高的前 n 个题材，计数相同时按名称排序保证稳定。
func (p *UserProfile) TopGenres(n int) []string {
	if len(p.GenreAffinity) == 0 || n <= 0 {
		return nil
	}
	genres := make([]string, 0, len(p.GenreAffinity))
	for g := range p.GenreAffinity {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		gi, gj := genres[i], genres[j]
		if p.GenreAffinity[gi] != p.GenreAffinity[gj] {
			return p.GenreAffinity[gi] > p.GenreAffinity[gj]
		}
		return gi < gj
	})
	if len(genres) > n {
		genres = genres[:n]
	}
	return genres
}
