package portfolio

import (
	"slices"

	"portfoliobuilder/internal/model"
)

// MoveSection 把 from 位置的 section 移动到 to 位置，返回新列表并重写所有 Order。
// to 超出范围时会被夹到 [0, len-1]（拖拽手势可能越界）；from 越界时返回原样的副本。
// 输入切片不会被修改。
func MoveSection(sections []model.Section, from, to int) []model.Section {
	out := model.CloneSections(sections)
	n := len(out)
	if from < 0 || from >= n {
		return renumber(out)
	}

	to = min(max(to, 0), n-1)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return renumber(out)
}

// MoveUp 把 index 处的 section 上移一位（第一位时不变）
func MoveUp(sections []model.Section, index int) []model.Section {
	return MoveSection(sections, index, index-1)
}

// MoveDown 把 index 处的 section 下移一位（最后一位时不变）
func MoveDown(sections []model.Section, index int) []model.Section {
	return MoveSection(sections, index, index+1)
}

// renumber 按切片位置重写 Order
func renumber(sections []model.Section) []model.Section {
	for i := range sections {
		sections[i].Order = i
	}
	return sections
}
