package model

import "slices"

// Section 作品集中一个可开关、可排序的内容块
type Section struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Order   int    `json:"order"`
}

// MenuPosition 导航菜单位置
type MenuPosition string

const (
	MenuTop   MenuPosition = "top"
	MenuLeft  MenuPosition = "left"
	MenuRight MenuPosition = "right"
)

// MenuPositions 所有合法的菜单位置
var MenuPositions = []MenuPosition{MenuTop, MenuLeft, MenuRight}

// Valid 判断是否为合法枚举值
func (m MenuPosition) Valid() bool {
	for _, v := range MenuPositions {
		if m == v {
			return true
		}
	}
	return false
}

// ProjectStyle 作品展示样式
type ProjectStyle string

const (
	StyleGrid     ProjectStyle = "grid"
	StyleList     ProjectStyle = "list"
	StyleCarousel ProjectStyle = "carousel"
	StyleMasonry  ProjectStyle = "masonry"
)

// ProjectStyles 所有合法的展示样式
var ProjectStyles = []ProjectStyle{StyleGrid, StyleList, StyleCarousel, StyleMasonry}

// Valid 判断是否为合法枚举值
func (s ProjectStyle) Valid() bool {
	for _, v := range ProjectStyles {
		if s == v {
			return true
		}
	}
	return false
}

// ProjectConfig 作品集的结构和布局偏好
// Sections 的切片顺序与每个元素的 Order 字段始终保持一致
type ProjectConfig struct {
	Sections              []Section    `json:"sections"`
	MenuPosition          MenuPosition `json:"menu_position"`
	ProjectStyle          ProjectStyle `json:"project_style"`
	ProjectsPerRowDesktop int          `json:"projects_per_row_desktop"`
	ProjectsPerRowMobile  int          `json:"projects_per_row_mobile"`
}

// Clone 返回深拷贝
func (c ProjectConfig) Clone() ProjectConfig {
	out := c
	out.Sections = CloneSections(c.Sections)
	return out
}

// Equal 字段和 sections 逐项相同
func (c ProjectConfig) Equal(other ProjectConfig) bool {
	return c.MenuPosition == other.MenuPosition &&
		c.ProjectStyle == other.ProjectStyle &&
		c.ProjectsPerRowDesktop == other.ProjectsPerRowDesktop &&
		c.ProjectsPerRowMobile == other.ProjectsPerRowMobile &&
		slices.Equal(c.Sections, other.Sections)
}

// CloneSections 复制 section 列表（nil 保持为 nil）
func CloneSections(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}
