package dataset

import (
	"fmt"
	"testing"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
)

func f64(v float64) *float64 { return &v }

func catalog(n int) []*core.Game {
	games := make([]*core.Game, 0, n)
	for i := 0; i < n; i++ {
		games = append(games, &core.Game{
			ID:       fmt.Sprintf("g%d", i),
			Genres:   core.NameList{"Action"},
			Rating:   f64(3.5),
			Playtime: f64(10),
		})
	}
	return games
}

func smallConfig() core.TrainingConfig {
	cfg := core.DefaultTrainingConfig()
	cfg.MinGames = 3
	cfg.MinInteractions = 1
	cfg.MinUsers = 1
	return cfg
}

func TestSynthesizeInsufficientGames(t *testing.T) {
	games := catalog(30)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionLike},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	// 默认门槛要求 50 个游戏
	_, err := Synthesize(games, interactions, vocab, core.DefaultTrainingConfig())
	if !core.IsInsufficientData(err) {
		t.Fatalf("err = %v, want INSUFFICIENT_DATA", err)
	}
}

func TestSynthesizePositiveWeights(t *testing.T) {
	games := catalog(5)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionFavorite},
		{UserID: "u1", GameID: "g1", Action: core.ActionPlayed},
		{UserID: "u1", GameID: "g2", Action: core.ActionLike},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	ds, err := Synthesize(games, interactions, vocab, smallConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if ds.Positives != 3 {
		t.Fatalf("Positives = %d, want 3", ds.Positives)
	}
	if got := len(ds.Train) + len(ds.Val); got != ds.Positives+ds.Negatives {
		t.Errorf("total examples = %d, want %d", got, ds.Positives+ds.Negatives)
	}
}

func TestSynthesizeNativeWeights(t *testing.T) {
	games := catalog(5)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionFavorite},
		{UserID: "u1", GameID: "g1", Action: core.ActionPlayed},
		{UserID: "u1", GameID: "g2", Action: core.ActionLike},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	cfg := smallConfig()
	cfg.ValidationSplit = 0.01 // 几乎全部进训练集，便于检查样本
	ds, err := Synthesize(games, interactions, vocab, cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	weights := make(map[float64]int)
	for _, ex := range append(ds.Train, ds.Val...) {
		if ex.Label == 1 {
			weights[ex.Weight]++
		}
	}
	if weights[1.5] != 1 || weights[1.2] != 1 || weights[1.0] != 1 {
		t.Errorf("positive weight histogram = %v, want one each of 1.5/1.2/1.0", weights)
	}
}

func TestSynthesizeDuplicateWeights(t *testing.T) {
	games := catalog(5)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionFavorite},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	cfg := smallConfig()
	cfg.DuplicateWeights = true
	ds, err := Synthesize(games, interactions, vocab, cfg)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	// 单条 favorite（权重 1.5）复制为 round(1.5) = 2 份正样本
	if ds.Positives != 2 {
		t.Fatalf("Positives = %d, want 2", ds.Positives)
	}
	for _, ex := range append(ds.Train, ds.Val...) {
		if ex.Label == 1 && ex.Weight != 1 {
			t.Errorf("duplicated positive carries weight %v, want 1", ex.Weight)
		}
	}
}

func TestSynthesizeNegativesExcludeInteracted(t *testing.T) {
	games := catalog(8)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionLike},
		{UserID: "u1", GameID: "g1", Action: core.ActionLike},
		{UserID: "u2", GameID: "g2", Action: core.ActionPlayed},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	ds, err := Synthesize(games, interactions, vocab, smallConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	interacted := map[[2]int]bool{}
	for _, inter := range interactions {
		u, _ := ds.Users.IndexOf(inter.UserID)
		g, _ := ds.Games.IndexOf(inter.GameID)
		interacted[[2]int{u, g}] = true
	}
	for _, ex := range append(ds.Train, ds.Val...) {
		if ex.Label == 0 && interacted[[2]int{ex.UserIdx, ex.GameIdx}] {
			t.Fatalf("negative sampled from interacted pair (%d,%d)", ex.UserIdx, ex.GameIdx)
		}
	}
	if ds.Negatives > 2*ds.Positives {
		t.Errorf("Negatives = %d, exceeds 2x positives (%d)", ds.Negatives, ds.Positives)
	}
}

func TestSynthesizeAliasResolution(t *testing.T) {
	games := catalog(5)
	games[0].Slug = "zero-dawn"
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "zero-dawn", Action: core.ActionLike}, // slug 引用
		{UserID: "u1", GameID: "g1", Action: core.ActionLike},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	ds, err := Synthesize(games, interactions, vocab, smallConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if ds.Dropped != 0 {
		t.Errorf("Dropped = %d, slug interaction should resolve", ds.Dropped)
	}
	if ds.Positives != 2 {
		t.Errorf("Positives = %d, want 2", ds.Positives)
	}
}

func TestSynthesizeDeterminism(t *testing.T) {
	games := catalog(10)
	interactions := []core.Interaction{
		{UserID: "u1", GameID: "g0", Action: core.ActionLike},
		{UserID: "u2", GameID: "g3", Action: core.ActionFavorite},
	}
	vocab := feature.BuildVocabulary(games, feature.VocabularyOptions{})

	a, err := Synthesize(games, interactions, vocab, smallConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	b, err := Synthesize(games, interactions, vocab, smallConfig())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if len(a.Train) != len(b.Train) || len(a.Val) != len(b.Val) {
		t.Fatalf("partition sizes differ: (%d,%d) vs (%d,%d)", len(a.Train), len(a.Val), len(b.Train), len(b.Val))
	}
	for i := range a.Train {
		x, y := a.Train[i], b.Train[i]
		if x.UserIdx != y.UserIdx || x.GameIdx != y.GameIdx || x.Label != y.Label {
			t.Fatalf("train example %d differs: %+v vs %+v", i, x, y)
		}
	}
}
