package wizard

import (
	"context"
	"errors"
	"strings"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/portfolio"
)

// Step 向导步骤，从 1 开始
type Step int

const (
	SelectSections     Step = 1
	ChooseMenuPosition Step = 2
	ChooseProjectStyle Step = 3
	FinalAdjustments   Step = 4
)

func (s Step) String() string {
	switch s {
	case SelectSections:
		return "select_sections"
	case ChooseMenuPosition:
		return "choose_menu_position"
	case ChooseProjectStyle:
		return "choose_project_style"
	case FinalAdjustments:
		return "final_adjustments"
	default:
		return "unknown"
	}
}

// BackResult Back 的结果：回退了一步，或者调用方应关闭向导
type BackResult int

const (
	BackMoved BackResult = iota
	BackCancel
)

var ErrNotAtFinalStep = errors.New("wizard: create is only allowed at the final step")

// ProjectCreator 接收向导产出的草稿并持久化
type ProjectCreator interface {
	CreateFromWizard(ctx context.Context, draft model.ProjectDraft) (*model.Project, error)
}

// CreatorFunc 把普通函数适配为 ProjectCreator
type CreatorFunc func(ctx context.Context, draft model.ProjectDraft) (*model.Project, error)

func (f CreatorFunc) CreateFromWizard(ctx context.Context, draft model.ProjectDraft) (*model.Project, error) {
	return f(ctx, draft)
}

// Wizard 多步创建作品集的状态。所有字段可 JSON 序列化，便于按用户保存到 Redis。
type Wizard struct {
	Step   Step                `json:"step"`
	Name   string              `json:"name"`
	Config model.ProjectConfig `json:"config"`
}

// New 返回处于第一步、使用默认配置的向导
func New() *Wizard {
	return &Wizard{Step: SelectSections, Config: portfolio.DefaultConfig()}
}

// Next 前进一步，最后一步时不变
func (w *Wizard) Next() Step {
	if w.Step < FinalAdjustments {
		w.Step++
	}
	return w.Step
}

// Back 后退一步。已经在第一步时不改变状态，返回 BackCancel。
func (w *Wizard) Back() BackResult {
	if w.Step <= SelectSections {
		w.Step = SelectSections
		return BackCancel
	}
	w.Step--
	return BackMoved
}

// Cancel 丢弃所有编辑，恢复默认值
func (w *Wizard) Cancel() {
	*w = *New()
}

// SetName 设置作品集名称
func (w *Wizard) SetName(name string) {
	w.Name = strings.TrimSpace(name)
}

// ToggleSection 切换草稿中某个 section
func (w *Wizard) ToggleSection(index int) {
	w.Config.Sections = portfolio.ToggleSection(w.Config.Sections, index)
}

// MoveSection 在草稿中移动 section
func (w *Wizard) MoveSection(from, to int) {
	w.Config.Sections = portfolio.MoveSection(w.Config.Sections, from, to)
}

// UpdateConfig 修改草稿配置的一个字段，校验失败时草稿不变
func (w *Wizard) UpdateConfig(update portfolio.ConfigUpdate) error {
	cfg, err := portfolio.UpdateConfig(w.Config, update)
	if err != nil {
		return err
	}
	w.Config = cfg
	return nil
}

// Draft 当前草稿
func (w *Wizard) Draft() model.ProjectDraft {
	name := w.Name
	if name == "" {
		name = "Mi portafolio"
	}
	return model.ProjectDraft{
		Name:   name,
		Config: w.Config.Clone(),
	}
}

// Create 只能在最后一步调用。成功后向导重置到第一步；失败时保留状态以便重试。
func (w *Wizard) Create(ctx context.Context, creator ProjectCreator) (*model.Project, error) {
	if w.Step != FinalAdjustments {
		return nil, ErrNotAtFinalStep
	}
	project, err := creator.CreateFromWizard(ctx, w.Draft())
	if err != nil {
		return nil, err
	}
	w.Cancel()
	return project, nil
}
