package portfolio

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"portfoliobuilder/internal/model"
)

// 每行作品数的取值范围（超出范围直接拒绝，不做截断）
const (
	MinProjectsPerRowDesktop = 1
	MaxProjectsPerRowDesktop = 4
	MinProjectsPerRowMobile  = 1
	MaxProjectsPerRowMobile  = 3

	MaxSections          = 20
	MaxSectionNameLength = 80
)

// ValidateSections 校验 section 列表，返回按 Order 排好序的副本。
// 要求：至少一个 section，名称非空，Order 恰好是 0..n-1 的一个排列。
func ValidateSections(sections []model.Section) ([]model.Section, error) {
	n := len(sections)
	if n == 0 || n > MaxSections {
		return nil, &ValidationError{
			Field:    string(FieldSections),
			Expected: fmt.Sprintf("between 1 and %d sections", MaxSections),
			Value:    n,
		}
	}

	seen := make([]bool, n)
	for i, s := range sections {
		name := strings.TrimSpace(s.Name)
		if name == "" || utf8.RuneCountInString(name) > MaxSectionNameLength {
			return nil, &ValidationError{
				Field:    fmt.Sprintf("%s[%d].name", FieldSections, i),
				Expected: fmt.Sprintf("a non-empty name of at most %d characters", MaxSectionNameLength),
				Value:    s.Name,
			}
		}
		if s.Order < 0 || s.Order >= n || seen[s.Order] {
			return nil, &ValidationError{
				Field:    fmt.Sprintf("%s[%d].order", FieldSections, i),
				Expected: fmt.Sprintf("a unique order in [0, %d]", n-1),
				Value:    s.Order,
			}
		}
		seen[s.Order] = true
	}

	out := model.CloneSections(sections)
	slices.SortFunc(out, func(a, b model.Section) int { return a.Order - b.Order })
	for i := range out {
		out[i].Name = strings.TrimSpace(out[i].Name)
	}
	return out, nil
}

func validateMenuPosition(m model.MenuPosition) error {
	if !m.Valid() {
		return &ValidationError{
			Field:    string(FieldMenuPosition),
			Expected: "one of " + joinEnum(model.MenuPositions),
			Value:    string(m),
		}
	}
	return nil
}

func validateProjectStyle(s model.ProjectStyle) error {
	if !s.Valid() {
		return &ValidationError{
			Field:    string(FieldProjectStyle),
			Expected: "one of " + joinEnum(model.ProjectStyles),
			Value:    string(s),
		}
	}
	return nil
}

func validateRange(field FieldName, v, lo, hi int) error {
	if v < lo || v > hi {
		return &ValidationError{
			Field:    string(field),
			Expected: fmt.Sprintf("an integer in [%d, %d]", lo, hi),
			Value:    v,
		}
	}
	return nil
}

// ValidateConfig 校验整个配置，返回规范化后的副本（sections 按 Order 排序）
func ValidateConfig(cfg model.ProjectConfig) (model.ProjectConfig, error) {
	sections, err := ValidateSections(cfg.Sections)
	if err != nil {
		return cfg, err
	}
	if err := validateMenuPosition(cfg.MenuPosition); err != nil {
		return cfg, err
	}
	if err := validateProjectStyle(cfg.ProjectStyle); err != nil {
		return cfg, err
	}
	if err := validateRange(FieldProjectsPerRowDesktop, cfg.ProjectsPerRowDesktop, MinProjectsPerRowDesktop, MaxProjectsPerRowDesktop); err != nil {
		return cfg, err
	}
	if err := validateRange(FieldProjectsPerRowMobile, cfg.ProjectsPerRowMobile, MinProjectsPerRowMobile, MaxProjectsPerRowMobile); err != nil {
		return cfg, err
	}

	out := cfg.Clone()
	out.Sections = sections
	return out, nil
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
