// Package feature 负责把游戏元数据转成定长数值向量，并维护训练产物的特征元数据。
//
// 编码协议（训练与推理必须一致）：
//
//	[genre one-hot | tag one-hot | rating/5 | metacritic/100 | log10(playtime+1)/log10(101) | (year-1990)/(maxYear-1990)]
//
// 词表在一次训练内构建一次，之后 Encode 是纯函数；推理时目录里新出现的
// 题材/标签不在词表内，直接忽略而不是报错，保证向量长度恒定。
package feature

import (
	"math"
	"sort"
	"time"

	"github.com/rushteam/gamerec/core"
)

// 标量特征缺失时的中性默认值。
const neutralDefault = 0.5

// 标量特征归一化基准。
const (
	ratingScale     = 5.0
	metacriticScale = 100.0
	playtimeScale   = 101.0 // log10(playtime+1) / log10(101)，100 小时处到达 1.0
	yearFloor       = 1990
)

// defaultMaxTags 是标签词表的容量上限。
const defaultMaxTags = 20

// VocabularyOptions 控制词表构建行为。
type VocabularyOptions struct {
	// MaxTags 标签词表容量，<=0 时取 20
	MaxTags int

	// TagsByFrequency 按出现频次倒序挑选标签；
	// 默认 false：按首次出现顺序取前 MaxTags 个（与历史训练产物对齐）
	TagsByFrequency bool

	// MaxYear 发行年份归一化的上界；0 表示取构建时的当前年份。
	// 构建后固化在词表里，保证 Encode 是纯函数。
	MaxYear int
}

// Vocabulary 是一次训练运行的特征词表：题材全集、标签子集、平台全集与年份上界。
// 字段参与 JSON 序列化，随模型产物一起持久化。
type Vocabulary struct {
	Genres    []string `json:"genres"`
	Tags      []string `json:"tags"`
	Platforms []string `json:"platforms"`
	MaxYear   int      `json:"maxYear"`

	genreIdx map[string]int
	tagIdx   map[string]int
}

// BuildVocabulary 扫描全量目录构建词表。
//   - 题材：全部去重保留，首次出现顺序
//   - 标签：默认首次出现顺序取前 MaxTags 个；TagsByFrequency 时按频次取
//   - 平台：全部去重保留（只进元数据，不进向量）
func BuildVocabulary(games []*core.Game, opts VocabularyOptions) *Vocabulary {
	maxTags := opts.MaxTags
	if maxTags <= 0 {
		maxTags = defaultMaxTags
	}
	maxYear := opts.MaxYear
	if maxYear <= 0 {
		maxYear = time.Now().Year()
	}

	v := &Vocabulary{MaxYear: maxYear}

	seenGenre := make(map[string]struct{})
	seenPlatform := make(map[string]struct{})
	tagCount := make(map[string]int)
	var tagOrder []string

	for _, g := range games {
		if g == nil {
			continue
		}
		for _, genre := range g.Genres {
			if genre == "" {
				continue
			}
			if _, ok := seenGenre[genre]; !ok {
				seenGenre[genre] = struct{}{}
				v.Genres = append(v.Genres, genre)
			}
		}
		for _, tag := range g.Tags {
			if tag == "" {
				continue
			}
			if _, ok := tagCount[tag]; !ok {
				tagOrder = append(tagOrder, tag)
			}
			tagCount[tag]++
		}
		for _, p := range g.Platforms {
			if p == "" {
				continue
			}
			if _, ok := seenPlatform[p]; !ok {
				seenPlatform[p] = struct{}{}
				v.Platforms = append(v.Platforms, p)
			}
		}
	}

	if opts.TagsByFrequency {
		// 频次倒序，频次相同按首次出现顺序，保证可复现
		firstSeen := make(map[string]int, len(tagOrder))
		for i, t := range tagOrder {
			firstSeen[t] = i
		}
		sorted := make([]string, len(tagOrder))
		copy(sorted, tagOrder)
		sort.SliceStable(sorted, func(i, j int) bool {
			ti, tj := sorted[i], sorted[j]
			if tagCount[ti] != tagCount[tj] {
				return tagCount[ti] > tagCount[tj]
			}
			return firstSeen[ti] < firstSeen[tj]
		})
		if len(sorted) > maxTags {
			sorted = sorted[:maxTags]
		}
		v.Tags = sorted
	} else {
		if len(tagOrder) > maxTags {
			tagOrder = tagOrder[:maxTags]
		}
		v.Tags = tagOrder
	}

	v.buildLookups()
	return v
}

// NewVocabulary 从已有列表还原词表（产物加载路径）。
func NewVocabulary(genres, tags, platforms []string, maxYear int) *Vocabulary {
	if maxYear <= 0 {
		maxYear = time.Now().Year()
	}
	v := &Vocabulary{
		Genres:    genres,
		Tags:      tags,
		Platforms: platforms,
		MaxYear:   maxYear,
	}
	v.buildLookups()
	return v
}

func (v *Vocabulary) buildLookups() {
	v.genreIdx = make(map[string]int, len(v.Genres))
	for i, g := range v.Genres {
		v.genreIdx[g] = i
	}
	v.tagIdx = make(map[string]int, len(v.Tags))
	for i, t := range v.Tags {
		v.tagIdx[t] = i
	}
}

// VectorSize 返回编码向量的定长：|genres| + |tags| + 4 个标量。
func (v *Vocabulary) VectorSize() int {
	return len(v.Genres) + len(v.Tags) + 4
}

// Encode 把一条游戏记录编码为定长向量。纯函数，绝不失败：
// 缺失的标量字段回落到 0.5，词表外的题材/标签被忽略。
func (v *Vocabulary) Encode(g *core.Game) []float64 {
	if v.genreIdx == nil || v.tagIdx == nil {
		v.buildLookups()
	}

	vec := make([]float64, v.VectorSize())
	scalarBase := len(v.Genres) + len(v.Tags)

	if g != nil {
		for _, genre := range g.Genres {
			if i, ok := v.genreIdx[genre]; ok {
				vec[i] = 1.0
			}
		}
		for _, tag := range g.Tags {
			if i, ok := v.tagIdx[tag]; ok {
				vec[len(v.Genres)+i] = 1.0
			}
		}
	}

	vec[scalarBase] = v.ratingFeature(g)
	vec[scalarBase+1] = v.metacriticFeature(g)
	vec[scalarBase+2] = v.playtimeFeature(g)
	vec[scalarBase+3] = v.yearFeature(g)
	return vec
}

// EncodeAll 预编码整个目录，key 为规范 ID。训练集构造与批量打分共用。
func (v *Vocabulary) EncodeAll(games []*core.Game) map[string][]float64 {
	out := make(map[string][]float64, len(games))
	for _, g := range games {
		if g == nil || g.ID == "" {
			continue
		}
		out[g.ID] = v.Encode(g)
	}
	return out
}

func (v *Vocabulary) ratingFeature(g *core.Game) float64 {
	if g == nil || g.Rating == nil {
		return neutralDefault
	}
	return *g.Rating / ratingScale
}

func (v *Vocabulary) metacriticFeature(g *core.Game) float64 {
	if g == nil || g.Metacritic == nil {
		return neutralDefault
	}
	return *g.Metacritic / metacriticScale
}

func (v *Vocabulary) playtimeFeature(g *core.Game) float64 {
	if g == nil || g.Playtime == nil {
		return neutralDefault
	}
	p := *g.Playtime
	if p < 0 {
		p = 0
	}
	return clip01(math.Log10(p+1) / math.Log10(playtimeScale))
}

func (v *Vocabulary) yearFeature(g *core.Game) float64 {
	year, ok := 0, false
	if g != nil {
		year, ok = g.ReleaseYear()
	}
	if !ok {
		return neutralDefault
	}
	span := float64(v.MaxYear - yearFloor)
	if span < 1 {
		span = 1
	}
	return clip01(float64(year-yearFloor) / span)
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
