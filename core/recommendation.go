package core

import "time"

// 推荐理由文案。打分路径按题材生成个性化理由，冷启动路径使用固定文案。
const (
	ReasonPopular     = "Popular game with high ratings"
	ReasonPreferences = "Based on your preferences"
	ReasonGenrePrefix = "Similar genres: "
)

// Recommendation 是单条推荐结果：(游戏, 分数, 理由)。
// Score 归一到 [0,1]；Reason 是面向用户展示的解释文案。
type Recommendation struct {
	GameID string  `json:"gameId"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// RecommendationSet 是一次生成请求的完整输出，整体落库、整体替换：
// 同一用户的旧结果集在新一次生成后作废，不做增量更新。
type RecommendationSet struct {
	UserID          string           `json:"userId"`
	Recommendations []Recommendation `json:"recommendations"`

	// IsColdStart 标记本次结果来自人气兜底而非个性化模型。
	// 调用方据此渲染不同的 UI 提示。
	IsColdStart bool `json:"isColdStart"`

	// Message 是人类可读的状态说明（个性化成功 / 冷启动原因）。
	Message string `json:"message"`

	GeneratedAt time.Time `json:"generatedAt"`
}
