package recall

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/store"
)

func f64(v float64) *float64 { return &v }

func TestCatalogRecall(t *testing.T) {
	games := []*core.Game{
		{ID: "g1", Genres: core.NameList{"RPG"}},
		nil,
		{ID: ""},
		{ID: "g2"},
	}
	r := &Catalog{Games: games}

	items, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2 (nil and empty-id skipped)", len(items))
	}
	if items[0].Game() == nil || items[0].Game().ID != "g1" {
		t.Error("item should carry its game record")
	}
	if lbl, ok := items[0].Labels["recall_source"]; !ok || lbl.Value != "recall.catalog" {
		t.Error("recall_source label missing")
	}
}

func TestRankByPopularity(t *testing.T) {
	games := []*core.Game{
		{ID: "b", Rating: f64(3.0), Playtime: f64(5)},
		{ID: "a", Rating: f64(4.5), Playtime: f64(20)},
		{ID: "c"},
	}
	ranked := RankByPopularity(games, 0)
	if len(ranked) != 3 || ranked[0].ID != "a" || ranked[1].ID != "b" || ranked[2].ID != "c" {
		t.Fatalf("unexpected order: %v %v %v", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	if got := len(RankByPopularity(games, 2)); got != 2 {
		t.Errorf("limited len = %d, want 2", got)
	}
}

func TestPopularityRecallFromZSet(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	// 离线任务预计算的人气榜
	st.ZAdd(ctx, "popular:games", 90, "g1")
	st.ZAdd(ctx, "popular:games", 15, "g2")
	st.ZAdd(ctx, "popular:games", 40, "g3")

	games := []*core.Game{
		{ID: "g1", Rating: f64(4.5), Playtime: f64(20)},
		{ID: "g2", Rating: f64(3.0), Playtime: f64(5)},
		{ID: "g3", Rating: f64(4.0), Playtime: f64(10)},
	}
	r := &Popularity{Store: st, Key: "popular:games", Games: games, Limit: 2}

	items, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != "g1" || items[1].ID != "g3" {
		t.Errorf("order = [%s %s], want [g1 g3]", items[0].ID, items[1].ID)
	}
	if items[0].Score != 0.9 {
		t.Errorf("score(g1) = %v, want 0.9", items[0].Score)
	}
}

func TestPopularityRecallFromJSONKey(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	data, _ := json.Marshal([]string{"g2", "g1"})
	st.Set(ctx, "popular:json", data)

	games := []*core.Game{
		{ID: "g1", Rating: f64(4.5), Playtime: f64(20)},
		{ID: "g2", Rating: f64(3.0), Playtime: f64(5)},
	}

	// MemoryStore 实现 KeyValueStore，但该 key 不是 zset，回落到 JSON 读取
	r := &Popularity{Store: st, Key: "popular:json", Games: games}
	items, err := r.Recall(ctx, nil)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 || items[0].ID != "g2" {
		t.Fatalf("JSON-backed popularity order broken: %+v", items)
	}
}

func TestPopularityRecallInMemoryFallback(t *testing.T) {
	games := []*core.Game{
		{ID: "b", Rating: f64(3.0), Playtime: f64(5)},
		{ID: "a", Rating: f64(4.5), Playtime: f64(20)},
	}
	r := &Popularity{Games: games} // 没有 Store，现算排名

	items, err := r.Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" {
		t.Fatalf("in-memory ranking broken: %+v", items)
	}
}

func TestFanoutMerge(t *testing.T) {
	a := &Catalog{Games: []*core.Game{{ID: "g1"}, {ID: "g2"}}}
	b := &Catalog{Games: []*core.Game{{ID: "g2"}, {ID: "g3"}}}

	n := &Fanout{Sources: []Source{a, b}, Dedup: true}
	items, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	seen := make(map[string]int)
	for _, it := range items {
		seen[it.ID]++
	}
	if len(seen) != 3 {
		t.Fatalf("distinct ids = %d, want 3", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s appears %d times after dedup", id, n)
		}
	}
}
