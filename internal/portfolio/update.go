package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"portfoliobuilder/internal/model"
)

// FieldName 可单独更新的配置字段
type FieldName string

const (
	FieldSections              FieldName = "sections"
	FieldMenuPosition          FieldName = "menuPosition"
	FieldProjectStyle          FieldName = "projectStyle"
	FieldProjectsPerRowDesktop FieldName = "projectsPerRowDesktop"
	FieldProjectsPerRowMobile  FieldName = "projectsPerRowMobile"
)

// Fields 所有可更新字段
var Fields = []FieldName{
	FieldSections,
	FieldMenuPosition,
	FieldProjectStyle,
	FieldProjectsPerRowDesktop,
	FieldProjectsPerRowMobile,
}

// ConfigUpdate 是单字段更新的封闭和类型，每个变体携带自己类型的值。
// 只有本包内的 Set* 类型实现它。
type ConfigUpdate interface {
	Field() FieldName
	Validate() error
	applyTo(cfg *model.ProjectConfig)
}

// SetSections 替换整个 section 列表
type SetSections struct{ Sections []model.Section }

// SetMenuPosition 修改菜单位置
type SetMenuPosition struct{ Position model.MenuPosition }

// SetProjectStyle 修改展示样式
type SetProjectStyle struct{ Style model.ProjectStyle }

// SetProjectsPerRowDesktop 修改桌面端每行作品数
type SetProjectsPerRowDesktop struct{ Count int }

// SetProjectsPerRowMobile 修改移动端每行作品数
type SetProjectsPerRowMobile struct{ Count int }

func (SetSections) Field() FieldName              { return FieldSections }
func (SetMenuPosition) Field() FieldName          { return FieldMenuPosition }
func (SetProjectStyle) Field() FieldName          { return FieldProjectStyle }
func (SetProjectsPerRowDesktop) Field() FieldName { return FieldProjectsPerRowDesktop }
func (SetProjectsPerRowMobile) Field() FieldName  { return FieldProjectsPerRowMobile }

func (u SetSections) Validate() error {
	_, err := ValidateSections(u.Sections)
	return err
}
func (u SetMenuPosition) Validate() error { return validateMenuPosition(u.Position) }
func (u SetProjectStyle) Validate() error { return validateProjectStyle(u.Style) }
func (u SetProjectsPerRowDesktop) Validate() error {
	return validateRange(FieldProjectsPerRowDesktop, u.Count, MinProjectsPerRowDesktop, MaxProjectsPerRowDesktop)
}
func (u SetProjectsPerRowMobile) Validate() error {
	return validateRange(FieldProjectsPerRowMobile, u.Count, MinProjectsPerRowMobile, MaxProjectsPerRowMobile)
}

func (u SetSections) applyTo(cfg *model.ProjectConfig) {
	// Validate 已经通过，这里只取规范化结果
	cfg.Sections, _ = ValidateSections(u.Sections)
}

func (u SetMenuPosition) applyTo(cfg *model.ProjectConfig) { cfg.MenuPosition = u.Position }
func (u SetProjectStyle) applyTo(cfg *model.ProjectConfig) { cfg.ProjectStyle = u.Style }
func (u SetProjectsPerRowDesktop) applyTo(cfg *model.ProjectConfig) {
	cfg.ProjectsPerRowDesktop = u.Count
}
func (u SetProjectsPerRowMobile) applyTo(cfg *model.ProjectConfig) {
	cfg.ProjectsPerRowMobile = u.Count
}

// UpdateConfig 返回只替换了 update 对应字段的新配置。
// 值不合法时返回 *ValidationError，原配置原样返回。
func UpdateConfig(cfg model.ProjectConfig, update ConfigUpdate) (model.ProjectConfig, error) {
	if update == nil {
		return cfg, &ValidationError{Expected: "one of " + joinEnum(Fields)}
	}
	if err := update.Validate(); err != nil {
		return cfg, err
	}

	out := cfg.Clone()
	update.applyTo(&out)
	return out, nil
}

// ParseConfigUpdate 把 JSON 客户端传来的 (field, value) 转成类型化的更新并校验。
// field 同时接受 camelCase 和 snake_case。
func ParseConfigUpdate(field string, raw json.RawMessage) (ConfigUpdate, error) {
	name, ok := lookupField(field)
	if !ok {
		return nil, &ValidationError{Field: field, Expected: "one of " + joinEnum(Fields), Value: field}
	}

	var update ConfigUpdate
	switch name {
	case FieldSections:
		var v []model.Section
		if err := decodeStrict(raw, &v); err != nil {
			return nil, typeError(name, "a list of sections", raw)
		}
		update = SetSections{Sections: v}
	case FieldMenuPosition:
		var v string
		if err := decodeStrict(raw, &v); err != nil {
			return nil, typeError(name, "one of "+joinEnum(model.MenuPositions), raw)
		}
		update = SetMenuPosition{Position: model.MenuPosition(v)}
	case FieldProjectStyle:
		var v string
		if err := decodeStrict(raw, &v); err != nil {
			return nil, typeError(name, "one of "+joinEnum(model.ProjectStyles), raw)
		}
		update = SetProjectStyle{Style: model.ProjectStyle(v)}
	case FieldProjectsPerRowDesktop, FieldProjectsPerRowMobile:
		var v int
		if err := decodeStrict(raw, &v); err != nil {
			return nil, typeError(name, "an integer", raw)
		}
		if name == FieldProjectsPerRowDesktop {
			update = SetProjectsPerRowDesktop{Count: v}
		} else {
			update = SetProjectsPerRowMobile{Count: v}
		}
	}

	if err := update.Validate(); err != nil {
		return nil, err
	}
	return update, nil
}

var fieldAliases = map[string]FieldName{
	"sections":                 FieldSections,
	"menuPosition":             FieldMenuPosition,
	"menu_position":            FieldMenuPosition,
	"projectStyle":             FieldProjectStyle,
	"project_style":            FieldProjectStyle,
	"projectsPerRowDesktop":    FieldProjectsPerRowDesktop,
	"projects_per_row_desktop": FieldProjectsPerRowDesktop,
	"projectsPerRowMobile":     FieldProjectsPerRowMobile,
	"projects_per_row_mobile":  FieldProjectsPerRowMobile,
}

func lookupField(field string) (FieldName, bool) {
	name, ok := fieldAliases[strings.TrimSpace(field)]
	return name, ok
}

// decodeStrict 拒绝 null、未知字段和尾随数据
func decodeStrict(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("value is null")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func typeError(field FieldName, expected string, raw json.RawMessage) *ValidationError {
	return &ValidationError{Field: string(field), Expected: expected, Value: string(raw)}
}
