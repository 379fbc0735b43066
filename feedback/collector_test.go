package feedback

import (
	"context"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/pkg/utils"
)

func testItems() []*core.Item {
	a := core.NewItem("g1")
	a.Score = 0.9
	a.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
	a.PutLabel("reason", utils.Label{Value: "Because you like RPG", Source: "postprocess"})
	b := core.NewItem("g2")
	b.Score = 0.4
	return []*core.Item{a, b}
}

func TestMemoryCollectorImpression(t *testing.T) {
	c := NewMemoryCollector()
	rctx := &core.RecommendContext{UserID: "u1", Scene: "home"}

	if err := c.RecordImpression(context.Background(), rctx, testItems()); err != nil {
		t.Fatalf("RecordImpression: %v", err)
	}

	events := c.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	first := events[0]
	if first.Type != EventImpression || first.UserID != "u1" || first.GameID != "g1" {
		t.Errorf("event = %+v", first)
	}
	if first.Position != 0 || first.Score != 0.9 {
		t.Errorf("position/score = %d/%v", first.Position, first.Score)
	}
	if first.Labels["recall_source"] != "catalog" || first.Labels["reason"] == "" {
		t.Errorf("labels = %v", first.Labels)
	}
	if events[1].Position != 1 {
		t.Errorf("second position = %d, want 1", events[1].Position)
	}
}

func TestMemoryCollectorActions(t *testing.T) {
	c := NewMemoryCollector()
	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: "u1", Scene: "home"}

	c.RecordClick(ctx, rctx, "g1", 3)
	c.RecordAction(ctx, rctx, "g1", EventFavorite, map[string]any{"from": "detail"})

	events := c.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != EventClick || events[0].Position != 3 {
		t.Errorf("click = %+v", events[0])
	}
	if events[1].Type != EventFavorite || events[1].Extras["from"] != "detail" {
		t.Errorf("action = %+v", events[1])
	}
}

func TestMemoryCollectorClosed(t *testing.T) {
	c := NewMemoryCollector()
	c.Close()
	c.RecordClick(context.Background(), &core.RecommendContext{UserID: "u1"}, "g1", 0)
	if len(c.Events()) != 0 {
		t.Errorf("closed collector should drop events")
	}
}

type kindNode struct{ kind pipeline.Kind }

func (n kindNode) Name() string { return "test" }

func (n kindNode) Kind() pipeline.Kind { return n.kind }

func (n kindNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	return items, nil
}

func TestHookRecordsAfterPostProcess(t *testing.T) {
	c := NewMemoryCollector()
	h := NewHook(c)
	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: "u1", Scene: "home"}
	items := testItems()

	h.AfterNode(ctx, rctx, kindNode{pipeline.KindRecall}, items, nil)
	h.AfterNode(ctx, rctx, kindNode{pipeline.KindRank}, items, nil)
	if len(c.Events()) != 0 {
		t.Fatalf("non-postprocess nodes should not record")
	}

	h.AfterNode(ctx, rctx, kindNode{pipeline.KindPostProcess}, items, context.Canceled)
	if len(c.Events()) != 0 {
		t.Fatalf("failed node should not record")
	}

	h.AfterNode(ctx, rctx, kindNode{pipeline.KindPostProcess}, items, nil)
	if got := len(c.Events()); got != len(items) {
		t.Errorf("events = %d, want %d", got, len(items))
	}
}
