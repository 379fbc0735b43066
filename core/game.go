package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// ActionKind 是用户对游戏的行为类型。
// (userID, gameID, action) 三元组唯一；用户在 UI 中切换行为时由上游增删记录，
// 推荐引擎只读取某一时刻的快照。
type ActionKind string

const (
	ActionLike     ActionKind = "like"     // 点赞
	ActionFavorite ActionKind = "favorite" // 收藏
	ActionPlayed   ActionKind = "played"   // 玩过
)

// Weight 返回该行为作为正样本时的权重。
// 收藏 > 玩过 > 点赞，体现行为强度；未知行为按 like 处理。
func (a ActionKind) Weight() float64 {
	switch a {
	case ActionFavorite:
		return 1.5
	case ActionPlayed:
		return 1.2
	default:
		return 1.0
	}
}

// NameList 是归一化后的名称列表。
//
// 上游游戏元数据中 genres/tags/platforms 字段存在两种形态：
//   - ["Action", "RPG"]
//   - [{"name": "Action"}, {"name": "RPG"}]
//
// 类型歧义只在反序列化边界处理一次：NameList 统一收敛为 []string，
// 编码器与下游逻辑不再做任何形态判断。
type NameList []string

func (l *NameList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*l = plain
		return nil
	}

	var objs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objs); err != nil {
		return err
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Name != "" {
			out = append(out, o.Name)
		}
	}
	*l = out
	return nil
}

// Game 是游戏目录中的一条记录（推荐引擎视角下只读）。
//
// 三个数值字段与发行日期都可能缺失；缺失与零值语义不同
// （rating=0 表示 0 分，rating 缺失表示未知），因此用指针表达。
type Game struct {
	ID   string `json:"id"`             // 规范主键
	Slug string `json:"slug,omitempty"` // 人类可读别名，交互记录可能用它引用游戏
	Name string `json:"name,omitempty"`

	Genres    NameList `json:"genres,omitempty"`
	Tags      NameList `json:"tags,omitempty"`
	Platforms NameList `json:"platforms,omitempty"`

	Rating     *float64 `json:"rating,omitempty"`     // 0-5
	Metacritic *float64 `json:"metacritic,omitempty"` // 0-100
	Playtime   *float64 `json:"playtime,omitempty"`   // 平均时长（小时）

	Released string `json:"released,omitempty"` // 发行日期，"2006-01-02" 或纯年份
}

// ReleaseYear 解析发行年份。日期缺失或无法解析时返回 (0, false)。
func (g *Game) ReleaseYear() (int, bool) {
	if g == nil || g.Released == "" {
		return 0, false
	}
	if t, err := time.Parse("2006-01-02", g.Released); err == nil {
		return t.Year(), true
	}
	if len(g.Released) >= 4 {
		if y, err := strconv.Atoi(g.Released[:4]); err == nil && y > 0 {
			return y, true
		}
	}
	return 0, false
}

// Interaction 是 (用户, 游戏, 行为) 交互三元组。
// GameID 可能是规范 ID，也可能是 slug 别名——两者指向同一游戏，
// 下游在进入稠密索引空间前必须先做别名归一（见 index.Resolver）。
type Interaction struct {
	UserID string     `json:"userId"`
	GameID string     `json:"gameId"`
	Action ActionKind `json:"action"`
}

// GameLookup 构建按规范 ID 与 slug 双路检索的游戏表。
// 这是别名归一的唯一入口形态：任何用原始标识找游戏的地方都应经过它。
func GameLookup(games []*Game) map[string]*Game {
	m := make(map[string]*Game, len(games)*2)
	for _, g := range games {
		if g == nil || g.ID == "" {
			continue
		}
		m[g.ID] = g
		if g.Slug != "" && g.Slug != g.ID {
			if _, exists := m[g.Slug]; !exists {
				m[g.Slug] = g
			}
		}
	}
	return m
}
