package rank

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/index"
)

// idxScorer 按游戏下标给出确定分数，下标 1 打分失败。
type idxScorer struct{}

func (s idxScorer) Name() string { return "idx_scorer" }

func (s idxScorer) Score(_, gameIdx int, _ []float64) (float64, error) {
	if gameIdx == 1 {
		return 0, errors.New("scoring failed")
	}
	return float64(gameIdx) / 10, nil
}

func rankFixture() (*feature.Vocabulary, *index.Index, *index.Resolver, []*core.Item) {
	games := []*core.Game{
		{ID: "g0", Slug: "zero", Genres: core.NameList{"RPG"}},
		{ID: "g1", Genres: core.NameList{"Action"}},
		{ID: "g2", Genres: core.NameList{"RPG"}},
		{ID: "g3", Genres: core.NameList{"Indie"}},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})
	ix := index.Build([]string{"g0", "g1", "g2", "g3"})
	resolver := index.ResolverForGames(games)

	items := make([]*core.Item, 0, len(games)+1)
	for _, g := range games {
		it := core.NewItem(g.ID)
		it.SetGame(g)
		items = append(items, it)
	}
	unknown := core.NewItem("g99") // 训练映射之外
	unknown.SetGame(&core.Game{ID: "g99"})
	items = append(items, unknown)
	return vocab, ix, resolver, items
}

func TestModelNodeScoresAndSorts(t *testing.T) {
	vocab, ix, resolver, items := rankFixture()
	node := &ModelNode{Scorer: idxScorer{}, Vocab: vocab, Games: ix, Resolver: resolver}

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// g1 打分失败、g99 不在映射中，均被跳过；剩余按分数降序
	want := []string{"g3", "g2", "g0"}
	if len(out) != len(want) {
		t.Fatalf("items = %d, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d] = %s, want %s", i, out[i].ID, id)
		}
	}
	if lbl, ok := out[0].Labels["rank_model"]; !ok || lbl.Value != "idx_scorer" {
		t.Errorf("rank_model label = %v", out[0].Labels)
	}
}

func TestModelNodeParallelMatchesSerial(t *testing.T) {
	vocab, ix, resolver, items := rankFixture()
	serial := &ModelNode{Scorer: idxScorer{}, Vocab: vocab, Games: ix, Resolver: resolver}
	parallel := &ModelNode{Scorer: idxScorer{}, Vocab: vocab, Games: ix, Resolver: resolver, Parallel: 4}

	ctx := context.Background()
	rctx := &core.RecommendContext{UserID: "u1"}
	a, _ := serial.Process(ctx, rctx, items)

	_, _, _, items2 := rankFixture()
	b, _ := parallel.Process(ctx, rctx, items2)

	if len(a) != len(b) {
		t.Fatalf("serial %d vs parallel %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Score != b[i].Score {
			t.Errorf("position %d: serial (%s, %v) vs parallel (%s, %v)",
				i, a[i].ID, a[i].Score, b[i].ID, b[i].Score)
		}
	}
}

func TestModelNodeResolvesAliases(t *testing.T) {
	vocab, ix, resolver, _ := rankFixture()
	node := &ModelNode{Scorer: idxScorer{}, Vocab: vocab, Games: ix, Resolver: resolver}

	it := core.NewItem("zero") // slug 引用 g0
	it.SetGame(&core.Game{ID: "g0", Genres: core.NameList{"RPG"}})
	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 1 || out[0].Score != 0 {
		t.Errorf("alias candidate = %v", out)
	}
}

func TestModelNodeMissingDeps(t *testing.T) {
	_, _, _, items := rankFixture()
	node := &ModelNode{}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil || len(out) != len(items) {
		t.Errorf("unconfigured node should pass items through, got (%d, %v)", len(out), err)
	}
}
