package portfolio

import "portfoliobuilder/internal/model"

// ToggleSection 返回 index 处 Enabled 取反后的新列表，Order 不变。
// index 越界时返回原样的副本。
func ToggleSection(sections []model.Section, index int) []model.Section {
	out := model.CloneSections(sections)
	if index < 0 || index >= len(out) {
		return out
	}
	out[index].Enabled = !out[index].Enabled
	return out
}
