package feedback

import (
	"context"

	"github.com/rushteam/gamerec/core"
)

// EventType 反馈事件类型。
//
// 曝光/点击/跳过是展示侧信号；like/played/favorite 与交互记录的
// 行为类型对齐，离线清洗后可直接并入下一轮训练的交互快照。
type EventType string

const (
	EventImpression EventType = "impression" // 曝光
	EventClick      EventType = "click"      // 点击
	EventSkip       EventType = "skip"       // 跳过
	EventLike       EventType = "like"       // 点赞
	EventPlayed     EventType = "played"     // 游玩
	EventFavorite   EventType = "favorite"   // 收藏
)

// Event 反馈事件（轻量级，只包含必要信息）。
//
// 反馈只进下一轮离线重训，不做在线学习：采集链路允许丢、
// 允许迟到，但不允许阻塞推荐请求。
type Event struct {
	UserID    string            `json:"user_id"`
	GameID    string            `json:"game_id"`
	Scene     string            `json:"scene"`
	Type      EventType         `json:"type"`
	Timestamp int64             `json:"timestamp"` // Unix 时间戳（秒）
	Position  int               `json:"position"`  // 游戏在推荐列表中的位置
	Score     float64           `json:"score"`     // 推荐分数
	Labels    map[string]string `json:"labels"`    // 召回来源、推荐理由等标签
	Extras    map[string]any    `json:"extras,omitempty"`
}

// Collector 反馈收集器接口（异步非阻塞）。
type Collector interface {
	// RecordImpression 异步记录整个推荐列表的曝光（不阻塞）
	RecordImpression(ctx context.Context, rctx *core.RecommendContext, items []*core.Item) error

	// RecordClick 异步记录点击
	RecordClick(ctx context.Context, rctx *core.RecommendContext, gameID string, position int) error

	// RecordAction 异步记录行为反馈（like / played / favorite / skip）
	RecordAction(ctx context.Context, rctx *core.RecommendContext, gameID string, typ EventType, extras map[string]any) error

	// Close 优雅关闭（等待缓冲数据发送完成）
	Close() error
}

// impressionEvents 把一次推荐结果展开为曝光事件列表。
func impressionEvents(rctx *core.RecommendContext, items []*core.Item, now int64) []*Event {
	events := make([]*Event, 0, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		event := &Event{
			UserID:    rctx.UserID,
			GameID:    item.ID,
			Scene:     rctx.Scene,
			Type:      EventImpression,
			Timestamp: now,
			Position:  i,
			Score:     item.Score,
			Labels:    make(map[string]string),
		}
		for _, key := range []string{"recall_source", "rank_model", "reason"} {
			if lbl, ok := item.Labels[key]; ok {
				event.Labels[key] = lbl.Value
			}
		}
		events = append(events, event)
	}
	return events
}
