package project

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfoliobuilder/internal/model"
	"portfoliobuilder/internal/portfolio"
)

type fakeStore struct {
	projects  map[string]*model.Project
	seq       int
	updateErr error
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: map[string]*model.Project{}}
}

func (f *fakeStore) ListByUser(_ context.Context, userID int) ([]*model.Project, error) {
	out := []*model.Project{}
	for _, p := range f.projects {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	cp := *p
	cp.Config = p.Config.Clone()
	return &cp, nil
}

func (f *fakeStore) Insert(_ context.Context, p *model.Project) error {
	f.seq++
	p.ID = fmt.Sprintf("p-%d", f.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, p *model.Project) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.projects[p.ID]; !ok {
		return ErrProjectNotFound
	}
	f.updates++
	p.UpdatedAt = time.Now()
	cp := *p
	cp.Config = p.Config.Clone()
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, userID int, id string) (bool, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(f.projects, id)
	return true, nil
}

func setup(t *testing.T) (*Service, *fakeStore, *model.Project) {
	t.Helper()
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	p, err := svc.SaveProject(context.Background(), 1, model.ProjectDraft{Name: "  Portafolio  "})
	require.NoError(t, err)
	return svc, store, p
}

func TestSaveProject_AppliesDefaults(t *testing.T) {
	_, _, p := setup(t)

	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Portafolio", p.Name)
	assert.Equal(t, portfolio.DefaultConfig(), p.Config)
	assert.Equal(t, DefaultTheme, p.Settings.Theme)
	assert.Equal(t, DefaultPrimaryColor, p.Settings.PrimaryColor)
	assert.NotNil(t, p.Content.Skills)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestSaveProject_Rejects(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())
	ctx := context.Background()
	var vErr *portfolio.ValidationError

	_, err := svc.SaveProject(ctx, 1, model.ProjectDraft{Name: " "})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)

	_, err = svc.SaveProject(ctx, 1, model.ProjectDraft{
		Name:   "x",
		Config: model.ProjectConfig{ProjectsPerRowDesktop: 7},
	})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "projectsPerRowDesktop", vErr.Field)

	_, err = svc.SaveProject(ctx, 1, model.ProjectDraft{
		Name:     "x",
		Settings: model.PortfolioSettings{IsPublic: true},
	})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "settings.slug", vErr.Field)

	_, err = svc.SaveProject(ctx, 1, model.ProjectDraft{
		Name:     "x",
		Settings: model.PortfolioSettings{PrimaryColor: "red"},
	})
	require.True(t, errors.As(err, &vErr))
}

func TestGetProject_Ownership(t *testing.T) {
	svc, _, p := setup(t)
	ctx := context.Background()

	got, err := svc.GetProject(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetProject(ctx, 2, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.GetProject(ctx, 1, "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestGetUserProjects(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	_, err := svc.SaveProject(ctx, 2, model.ProjectDraft{Name: "other"})
	require.NoError(t, err)

	mine, err := svc.GetUserProjects(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestUpdateProject(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()

	name := "Nuevo"
	settings := model.PortfolioSettings{IsPublic: true, Slug: "Ana-Dev"}
	got, err := svc.UpdateProject(ctx, 1, p.ID, model.ProjectPatch{Name: &name, Settings: &settings})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", got.Name)
	assert.Equal(t, "ana-dev", got.Settings.Slug)
	assert.Equal(t, portfolio.DefaultConfig(), got.Config)

	_, err = svc.UpdateProject(ctx, 1, p.ID, model.ProjectPatch{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)

	_, err = svc.UpdateProject(ctx, 2, p.ID, model.ProjectPatch{Name: &name})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	bad := model.ProjectConfig{Sections: []model.Section{{Name: "a", Order: 3}}}
	_, err = svc.UpdateProject(ctx, 1, p.ID, model.ProjectPatch{Config: &bad})
	var vErr *portfolio.ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Nuevo", store.projects[p.ID].Name)
}

func TestDeleteProject_Idempotent(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteProject(ctx, 2, p.ID))
	assert.Len(t, store.projects, 1)

	require.NoError(t, svc.DeleteProject(ctx, 1, p.ID))
	require.NoError(t, svc.DeleteProject(ctx, 1, p.ID))
	assert.Empty(t, store.projects)
}

func TestMoveAndToggleSection(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()

	got, err := svc.MoveSection(ctx, 1, p.ID, 5, -3)
	require.NoError(t, err)
	assert.Equal(t, "Contacto", got.Config.Sections[0].Name)
	assert.Equal(t, 0, got.Config.Sections[0].Order)
	assert.Equal(t, "Contacto", store.projects[p.ID].Config.Sections[0].Name)

	got, err = svc.ToggleSection(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, got.Config.Sections[0].Enabled)

	_, err = svc.ToggleSection(ctx, 3, p.ID, 0)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSectionNoOpsAreNotPersisted(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()
	before := store.updates

	got, err := svc.ToggleSection(ctx, 1, p.ID, 42)
	require.NoError(t, err)
	assert.Len(t, got.Config.Sections, 6)

	_, err = svc.MoveSection(ctx, 1, p.ID, -1, 2)
	require.NoError(t, err)

	_, err = svc.MoveSection(ctx, 1, p.ID, 0, 0)
	require.NoError(t, err)

	_, err = svc.UpdateConfig(ctx, 1, p.ID, portfolio.SetMenuPosition{Position: got.Config.MenuPosition})
	require.NoError(t, err)

	assert.Equal(t, before, store.updates)

	_, err = svc.ToggleSection(ctx, 1, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, before+1, store.updates)
}

func TestUpdateConfig(t *testing.T) {
	svc, store, p := setup(t)
	ctx := context.Background()

	got, err := svc.UpdateConfig(ctx, 1, p.ID, portfolio.SetProjectStyle{Style: model.StyleCarousel})
	require.NoError(t, err)
	assert.Equal(t, model.StyleCarousel, got.Config.ProjectStyle)

	_, err = svc.UpdateConfig(ctx, 1, p.ID, portfolio.SetProjectsPerRowDesktop{Count: 5})
	var vErr *portfolio.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 3, store.projects[p.ID].Config.ProjectsPerRowDesktop)
}

func TestUpdateConfig_StoreFailure(t *testing.T) {
	svc, store, p := setup(t)
	store.updateErr = errors.New("db down")

	_, err := svc.UpdateConfig(context.Background(), 1, p.ID, portfolio.SetMenuPosition{Position: model.MenuRight})
	assert.EqualError(t, err, "db down")
	assert.Equal(t, model.MenuTop, store.projects[p.ID].Config.MenuPosition)
}
