package project

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/portfolio"
)

const (
	MaxNameLength        = 120
	MaxDescriptionLength = 2000

	DefaultTheme        = "light"
	DefaultPrimaryColor = "#3b82f6"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,62}[a-z0-9])$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", &portfolio.ValidationError{
			Field:    "name",
			Expected: "a non-empty name of at most 120 characters",
			Value:    name,
		}
	}
	return name, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", &portfolio.ValidationError{
			Field:    "description",
			Expected: "at most 2000 characters",
			Value:    utf8.RuneCountInString(desc),
		}
	}
	return desc, nil
}

// normalizeSettings 填充默认主题和颜色；公开的作品集必须有合法 slug
func normalizeSettings(s model.PortfolioSettings) (model.PortfolioSettings, error) {
	s.Theme = strings.ToLower(strings.TrimSpace(s.Theme))
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}
	if s.Theme != "light" && s.Theme != "dark" {
		return s, &portfolio.ValidationError{Field: "settings.theme", Expected: "one of {light, dark}", Value: s.Theme}
	}

	if s.PrimaryColor == "" {
		s.PrimaryColor = DefaultPrimaryColor
	}
	if !colorPattern.MatchString(s.PrimaryColor) {
		return s, &portfolio.ValidationError{Field: "settings.primary_color", Expected: "a #rrggbb color", Value: s.PrimaryColor}
	}

	s.Slug = strings.ToLower(strings.TrimSpace(s.Slug))
	if s.Slug != "" && !slugPattern.MatchString(s.Slug) {
		return s, &portfolio.ValidationError{
			Field:    "settings.slug",
			Expected: "3 to 64 lowercase letters, digits or hyphens",
			Value:    s.Slug,
		}
	}
	if s.IsPublic && s.Slug == "" {
		return s, &portfolio.ValidationError{Field: "settings.slug", Expected: "a slug for a public portfolio", Value: ""}
	}
	return s, nil
}

// normalizeProject 校验并规范化一个完整的作品集
func normalizeProject(p *model.Project) error {
	name, err := validateName(p.Name)
	if err != nil {
		return err
	}
	desc, err := validateDescription(p.Description)
	if err != nil {
		return err
	}
	cfg, err := portfolio.ValidateConfig(portfolio.WithDefaults(p.Config))
	if err != nil {
		return err
	}
	settings, err := normalizeSettings(p.Settings)
	if err != nil {
		return err
	}

	p.Name = name
	p.Description = desc
	p.Config = cfg
	p.Settings = settings
	if p.Content.Skills == nil {
		p.Content.Skills = []string{}
	}
	if p.Content.Items == nil {
		p.Content.Items = []model.PortfolioItem{}
	}
	return nil
}
