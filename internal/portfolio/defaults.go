package portfolio

import "portfoliobuilder/internal/model"

var defaultSectionNames = []string{
	"Sobre mí",
	"Proyectos",
	"Experiencia",
	"Habilidades",
	"Testimonios",
	"Contacto",
}

// DefaultSections 返回新建作品集的默认 section 列表（全部启用）
func DefaultSections() []model.Section {
	sections := make([]model.Section, len(defaultSectionNames))
	for i, name := range defaultSectionNames {
		sections[i] = model.Section{Name: name, Enabled: true, Order: i}
	}
	return sections
}

// DefaultConfig 返回默认配置，每次调用都是新的副本
func DefaultConfig() model.ProjectConfig {
	return model.ProjectConfig{
		Sections:              DefaultSections(),
		MenuPosition:          model.MenuTop,
		ProjectStyle:          model.StyleGrid,
		ProjectsPerRowDesktop: 3,
		ProjectsPerRowMobile:  1,
	}
}

// WithDefaults 用默认值填充零值字段，已设置的字段保持不变
func WithDefaults(cfg model.ProjectConfig) model.ProjectConfig {
	def := DefaultConfig()
	out := cfg.Clone()
	if len(out.Sections) == 0 {
		out.Sections = def.Sections
	}
	if out.MenuPosition == "" {
		out.MenuPosition = def.MenuPosition
	}
	if out.ProjectStyle == "" {
		out.ProjectStyle = def.ProjectStyle
	}
	if out.ProjectsPerRowDesktop == 0 {
		out.ProjectsPerRowDesktop = def.ProjectsPerRowDesktop
	}
	if out.ProjectsPerRowMobile == 0 {
		out.ProjectsPerRowMobile = def.ProjectsPerRowMobile
	}
	return out
}
