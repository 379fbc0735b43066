package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

func TestTopNTruncates(t *testing.T) {
	node := &TopNNode{N: 2}
	out, err := node.Process(context.Background(), nil, items("a", "b", "c", "d"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("out = %v, want prefix [a b]", out)
	}
}

func TestTopNNoTruncation(t *testing.T) {
	node := &TopNNode{N: 10}
	out, _ := node.Process(context.Background(), nil, items("a", "b"))
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}

	node = &TopNNode{N: 0}
	out, _ = node.Process(context.Background(), nil, items("a", "b", "c"))
	if len(out) != 3 {
		t.Errorf("N=0 should not truncate, len = %d", len(out))
	}
}

func TestDiversityDedupByGenre(t *testing.T) {
	mk := func(id, genre string) *core.Item {
		it := core.NewItem(id)
		it.SetGame(&core.Game{ID: id, Genres: core.NameList{genre}})
		return it
	}
	in := []*core.Item{
		mk("a", "RPG"),
		mk("b", "Action"),
		mk("c", "RPG"), // 与 a 同题材，应被去掉
		mk("d", "Indie"),
	}

	node := &Diversity{}
	out, err := node.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	ids := make([]string, 0, len(out))
	for _, it := range out {
		ids = append(ids, it.ID)
	}
	want := []string{"a", "b", "d"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
