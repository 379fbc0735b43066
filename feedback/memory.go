package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/gamerec/core"
)

// MemoryCollector 内存采集器，用于测试与本地开发。
// 事件只追加不淘汰，不适合长时间运行的进程。
type MemoryCollector struct {
	mu     sync.Mutex
	events []*Event
	closed bool
}

// NewMemoryCollector 创建内存采集器。
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

func (c *MemoryCollector) RecordImpression(_ context.Context, rctx *core.RecommendContext, items []*core.Item) error {
	return c.append(impressionEvents(rctx, items, time.Now().Unix())...)
}

func (c *MemoryCollector) RecordClick(_ context.Context, rctx *core.RecommendContext, gameID string, position int) error {
	return c.append(&Event{
		UserID:    rctx.UserID,
		GameID:    gameID,
		Scene:     rctx.Scene,
		Type:      EventClick,
		Timestamp: time.Now().Unix(),
		Position:  position,
	})
}

func (c *MemoryCollector) RecordAction(_ context.Context, rctx *core.RecommendContext, gameID string, typ EventType, extras map[string]any) error {
	return c.append(&Event{
		UserID:    rctx.UserID,
		GameID:    gameID,
		Scene:     rctx.Scene,
		Type:      typ,
		Timestamp: time.Now().Unix(),
		Extras:    extras,
	})
}

func (c *MemoryCollector) append(events ...*Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.events = append(c.events, events...)
	return nil
}

// Events 返回已记录事件的快照。
func (c *MemoryCollector) Events() []*Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *MemoryCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
