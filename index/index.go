// Package index 维护字符串标识与稠密下标之间的双射。
//
// 嵌入层按下标取行，训练与推理必须共用同一份映射；下标映射只增不改，
// 顺序由首次出现决定，保证同一份输入构建出的映射完全一致。
package index

import "fmt"

// Index 是 string ID 与稠密下标的双向映射。
// 非并发安全：构建发生在训练期单协程内，推理期只读。
type Index struct {
	toIdx map[string]int
	toID  []string
}

// New 创建空映射。
func New() *Index {
	return &Index{toIdx: make(map[string]int)}
}

// Build 按首次出现顺序为每个去重后的 ID 分配下标。
// 重复 ID 只保留第一次出现的位置。
func Build(ids []string) *Index {
	ix := &Index{toIdx: make(map[string]int, len(ids))}
	for _, id := range ids {
		ix.Add(id)
	}
	return ix
}

// FromIDs 从稠密 ID 列表还原映射（产物加载路径）。
// 列表含重复项说明产物损坏，直接报错而不是静默去重。
func FromIDs(ids []string) (*Index, error) {
	ix := &Index{
		toIdx: make(map[string]int, len(ids)),
		toID:  make([]string, len(ids)),
	}
	for i, id := range ids {
		if _, dup := ix.toIdx[id]; dup {
			return nil, fmt.Errorf("index: duplicate id %q at position %d", id, i)
		}
		ix.toIdx[id] = i
		ix.toID[i] = id
	}
	return ix, nil
}

// Add 登记一个 ID 并返回其下标；已存在时幂等返回原下标。
func (ix *Index) Add(id string) int {
	if i, ok := ix.toIdx[id]; ok {
		return i
	}
	i := len(ix.toID)
	ix.toIdx[id] = i
	ix.toID = append(ix.toID, id)
	return i
}

// IndexOf 返回 ID 对应的下标。
func (ix *Index) IndexOf(id string) (int, bool) {
	i, ok := ix.toIdx[id]
	return i, ok
}

// IDOf 返回下标对应的 ID。
func (ix *Index) IDOf(i int) (string, bool) {
	if i < 0 || i >= len(ix.toID) {
		return "", false
	}
	return ix.toID[i], true
}

// Len 返回映射中的 ID 数量。
func (ix *Index) Len() int {
	return len(ix.toID)
}

// IDs 返回按下标排列的 ID 列表副本（用于产物序列化）。
func (ix *Index) IDs() []string {
	out := make([]string, len(ix.toID))
	copy(out, ix.toID)
	return out
}
