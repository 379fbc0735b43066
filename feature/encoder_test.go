package feature

import (
	"math"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func f64(v float64) *float64 { return &v }

func testGames() []*core.Game {
	return []*core.Game{
		{
			ID:         "g1",
			Slug:       "the-witcher-3",
			Genres:     core.NameList{"RPG", "Adventure"},
			Tags:       core.NameList{"open-world", "story-rich"},
			Platforms:  core.NameList{"pc"},
			Rating:     f64(4.5),
			Metacritic: f64(92),
			Playtime:   f64(46),
			Released:   "2015-05-19",
		},
		{
			ID:       "g2",
			Genres:   core.NameList{"Action"},
			Tags:     core.NameList{"roguelike"},
			Rating:   f64(3.0),
			Playtime: f64(5),
		},
		{
			ID:     "g3",
			Genres: core.NameList{"RPG"}, // 与 g1 重复，词表应去重
		},
	}
}

func TestVectorSizeInvariant(t *testing.T) {
	vocab := BuildVocabulary(testGames(), VocabularyOptions{MaxYear: 2024})

	want := len(vocab.Genres) + len(vocab.Tags) + 4
	if got := vocab.VectorSize(); got != want {
		t.Fatalf("VectorSize() = %d, want %d", got, want)
	}
	for _, g := range testGames() {
		if got := len(vocab.Encode(g)); got != want {
			t.Errorf("len(Encode(%s)) = %d, want %d", g.ID, got, want)
		}
	}
}

func TestVocabularyFirstSeenOrder(t *testing.T) {
	vocab := BuildVocabulary(testGames(), VocabularyOptions{MaxYear: 2024})

	wantGenres := []string{"RPG", "Adventure", "Action"}
	if len(vocab.Genres) != len(wantGenres) {
		t.Fatalf("Genres = %v, want %v", vocab.Genres, wantGenres)
	}
	for i, g := range wantGenres {
		if vocab.Genres[i] != g {
			t.Errorf("Genres[%d] = %q, want %q", i, vocab.Genres[i], g)
		}
	}
}

func TestEncodeDeterminism(t *testing.T) {
	games := testGames()
	vocab := BuildVocabulary(games, VocabularyOptions{MaxYear: 2024})

	a := vocab.Encode(games[0])
	b := vocab.Encode(games[0])
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Encode not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEncodeScalars(t *testing.T) {
	games := testGames()
	vocab := BuildVocabulary(games, VocabularyOptions{MaxYear: 2024})
	vec := vocab.Encode(games[0])

	base := len(vocab.Genres) + len(vocab.Tags)
	if got, want := vec[base], 4.5/5.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("rating feature = %v, want %v", got, want)
	}
	if got, want := vec[base+1], 92.0/100.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("metacritic feature = %v, want %v", got, want)
	}
	if got, want := vec[base+2], math.Log10(47)/math.Log10(101); math.Abs(got-want) > 1e-12 {
		t.Errorf("playtime feature = %v, want %v", got, want)
	}
	if got, want := vec[base+3], float64(2015-1990)/float64(2024-1990); math.Abs(got-want) > 1e-12 {
		t.Errorf("year feature = %v, want %v", got, want)
	}
}

func TestEncodeDefaultSafety(t *testing.T) {
	vocab := BuildVocabulary(testGames(), VocabularyOptions{MaxYear: 2024})

	// 全缺失的游戏：类别全 0，标量全 0.5
	vec := vocab.Encode(&core.Game{ID: "empty"})
	base := len(vocab.Genres) + len(vocab.Tags)
	for i := 0; i < base; i++ {
		if vec[i] != 0 {
			t.Errorf("categorical slot %d = %v, want 0", i, vec[i])
		}
	}
	for i := base; i < len(vec); i++ {
		if vec[i] != 0.5 {
			t.Errorf("scalar slot %d = %v, want 0.5", i, vec[i])
		}
	}

	// nil 游戏同样安全
	vec = vocab.Encode(nil)
	if len(vec) != vocab.VectorSize() {
		t.Fatalf("Encode(nil) len = %d, want %d", len(vec), vocab.VectorSize())
	}
}

func TestEncodeUnknownCategoriesIgnored(t *testing.T) {
	vocab := BuildVocabulary(testGames(), VocabularyOptions{MaxYear: 2024})

	known := vocab.Encode(&core.Game{ID: "x", Genres: core.NameList{"RPG"}})
	mixed := vocab.Encode(&core.Game{ID: "x", Genres: core.NameList{"RPG", "Sports"}})
	for i := range known {
		if known[i] != mixed[i] {
			t.Fatalf("unknown genre changed vector at slot %d", i)
		}
	}
}

func TestEncodeBounds(t *testing.T) {
	vocab := BuildVocabulary(testGames(), VocabularyOptions{MaxYear: 2024})

	// 超出范围的输入被裁剪到 [0,1]
	vec := vocab.Encode(&core.Game{
		ID:       "x",
		Playtime: f64(1e9),
		Released: "1950-01-01",
	})
	for i, v := range vec {
		if v < 0 || v > 1 {
			t.Errorf("slot %d = %v, out of [0,1]", i, v)
		}
	}
}
