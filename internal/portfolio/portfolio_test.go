package portfolio

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliobuilder/internal/model"
)

func threeSections() []model.Section {
	return []model.Section{
		{Name: "Sobre mí", Enabled: true, Order: 0},
		{Name: "Proyectos", Enabled: true, Order: 1},
		{Name: "Contacto", Enabled: true, Order: 2},
	}
}

func orders(sections []model.Section) []int {
	out := make([]int, len(sections))
	for i, s := range sections {
		out[i] = s.Order
	}
	return out
}

func names(sections []model.Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Name
	}
	return out
}

func TestMoveSection_LastToFirst(t *testing.T) {
	got := MoveSection(threeSections(), 2, 0)

	assert.Equal(t, []model.Section{
		{Name: "Contacto", Enabled: true, Order: 0},
		{Name: "Sobre mí", Enabled: true, Order: 1},
		{Name: "Proyectos", Enabled: true, Order: 2},
	}, got)
}

func TestMoveSection_PreservesSetAndContiguousOrder(t *testing.T) {
	in := DefaultSections()
	n := len(in)
	// to 故意越界，覆盖夹取逻辑
	for from := 0; from < n; from++ {
		for to := -2; to < n+2; to++ {
			got := MoveSection(in, from, to)
			require.Len(t, got, n)

			wantNames := names(in)
			gotNames := names(got)
			slices.Sort(wantNames)
			slices.Sort(gotNames)
			assert.Equal(t, wantNames, gotNames, "from=%d to=%d", from, to)

			assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, orders(got), "from=%d to=%d", from, to)

			clamped := min(max(to, 0), n-1)
			assert.Equal(t, in[from].Name, got[clamped].Name)

			// 其余元素相对顺序不变
			rest := slices.DeleteFunc(names(got), func(s string) bool { return s == in[from].Name })
			wantRest := slices.DeleteFunc(names(in), func(s string) bool { return s == in[from].Name })
			assert.Equal(t, wantRest, rest)
		}
	}
}

func TestMoveSection_DoesNotMutateInput(t *testing.T) {
	in := threeSections()
	_ = MoveSection(in, 0, 2)
	assert.Equal(t, threeSections(), in)
}

func TestMoveSection_FromOutOfRange(t *testing.T) {
	in := threeSections()
	assert.Equal(t, in, MoveSection(in, 7, 0))
	assert.Equal(t, in, MoveSection(in, -1, 0))
	assert.Empty(t, MoveSection(nil, 0, 0))
}

func TestMoveUpDown(t *testing.T) {
	in := threeSections()

	assert.Equal(t, []string{"Proyectos", "Sobre mí", "Contacto"}, names(MoveUp(in, 1)))
	assert.Equal(t, names(in), names(MoveUp(in, 0)))
	assert.Equal(t, []string{"Sobre mí", "Contacto", "Proyectos"}, names(MoveDown(in, 1)))
	assert.Equal(t, names(in), names(MoveDown(in, 2)))
}

func TestToggleSection(t *testing.T) {
	in := threeSections()

	got := ToggleSection(in, 1)
	assert.False(t, got[1].Enabled)
	assert.Equal(t, "Proyectos", got[1].Name)
	assert.Equal(t, 1, got[1].Order)
	assert.True(t, got[0].Enabled)
	assert.True(t, got[2].Enabled)
	assert.True(t, in[1].Enabled, "input must not change")

	for i := range in {
		assert.Equal(t, in, ToggleSection(ToggleSection(in, i), i))
	}
}

func TestToggleSection_OutOfRange(t *testing.T) {
	in := threeSections()
	assert.Equal(t, in, ToggleSection(in, 3))
	assert.Equal(t, in, ToggleSection(in, -1))
}

func TestUpdateConfig_FieldLocal(t *testing.T) {
	base := DefaultConfig()
	updates := []ConfigUpdate{
		SetSections{Sections: threeSections()},
		SetMenuPosition{Position: model.MenuLeft},
		SetProjectStyle{Style: model.StyleMasonry},
		SetProjectsPerRowDesktop{Count: 4},
		SetProjectsPerRowMobile{Count: 2},
	}

	for _, u := range updates {
		t.Run(string(u.Field()), func(t *testing.T) {
			got, err := UpdateConfig(base, u)
			require.NoError(t, err)

			want := base.Clone()
			switch v := u.(type) {
			case SetSections:
				want.Sections = v.Sections
			case SetMenuPosition:
				want.MenuPosition = v.Position
			case SetProjectStyle:
				want.ProjectStyle = v.Style
			case SetProjectsPerRowDesktop:
				want.ProjectsPerRowDesktop = v.Count
			case SetProjectsPerRowMobile:
				want.ProjectsPerRowMobile = v.Count
			}
			assert.Equal(t, want, got)
			assert.Equal(t, DefaultConfig(), base, "input must not change")
		})
	}
}

func TestUpdateConfig_RejectsOutOfRange(t *testing.T) {
	base := DefaultConfig()

	got, err := UpdateConfig(base, SetProjectsPerRowDesktop{Count: 5})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "projectsPerRowDesktop", vErr.Field)
	assert.Equal(t, "an integer in [1, 4]", vErr.Expected)
	assert.Equal(t, base, got)

	cases := []ConfigUpdate{
		SetProjectsPerRowDesktop{Count: 0},
		SetProjectsPerRowMobile{Count: 4},
		SetProjectsPerRowMobile{Count: -1},
		SetMenuPosition{Position: "bottom"},
		SetProjectStyle{Style: "cards"},
		SetSections{},
		SetSections{Sections: []model.Section{{Name: " ", Order: 0}}},
		SetSections{Sections: []model.Section{{Name: "a", Order: 0}, {Name: "b", Order: 0}}},
		SetSections{Sections: []model.Section{{Name: "a", Order: 1}}},
	}
	for _, u := range cases {
		_, err := UpdateConfig(base, u)
		assert.True(t, errors.As(err, &vErr), "%#v", u)
	}

	_, err = UpdateConfig(base, nil)
	assert.True(t, errors.As(err, &vErr))
}

func TestUpdateConfig_NormalizesSections(t *testing.T) {
	got, err := UpdateConfig(DefaultConfig(), SetSections{Sections: []model.Section{
		{Name: " Contacto ", Enabled: false, Order: 1},
		{Name: "Sobre mí", Enabled: true, Order: 0},
	}})
	require.NoError(t, err)
	assert.Equal(t, []model.Section{
		{Name: "Sobre mí", Enabled: true, Order: 0},
		{Name: "Contacto", Enabled: false, Order: 1},
	}, got.Sections)
}

func TestParseConfigUpdate(t *testing.T) {
	u, err := ParseConfigUpdate("menu_position", json.RawMessage(`"right"`))
	require.NoError(t, err)
	assert.Equal(t, SetMenuPosition{Position: model.MenuRight}, u)

	u, err = ParseConfigUpdate("projectsPerRowMobile", json.RawMessage(`2`))
	require.NoError(t, err)
	assert.Equal(t, SetProjectsPerRowMobile{Count: 2}, u)

	u, err = ParseConfigUpdate("sections", json.RawMessage(`[{"name":"A","enabled":true,"order":0}]`))
	require.NoError(t, err)
	assert.Equal(t, FieldSections, u.Field())

	var vErr *ValidationError
	for _, tc := range []struct {
		field string
		raw   string
	}{
		{"theme", `"dark"`},
		{"projectsPerRowDesktop", `"3"`},
		{"projectsPerRowDesktop", `2.5`},
		{"projectsPerRowDesktop", `null`},
		{"projectsPerRowDesktop", `9`},
		{"menuPosition", `1`},
		{"sections", `{"name":"A"}`},
		{"sections", `[{"name":"A","order":0,"extra":1}]`},
	} {
		_, err := ParseConfigUpdate(tc.field, json.RawMessage(tc.raw))
		assert.True(t, errors.As(err, &vErr), "%s=%s", tc.field, tc.raw)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg, err := ValidateConfig(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	bad := DefaultConfig()
	bad.ProjectsPerRowMobile = 0
	_, err = ValidateConfig(bad)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "projectsPerRowMobile", vErr.Field)
}

func TestWithDefaults(t *testing.T) {
	got := WithDefaults(model.ProjectConfig{ProjectStyle: model.StyleList})
	assert.Equal(t, model.StyleList, got.ProjectStyle)
	assert.Equal(t, model.MenuTop, got.MenuPosition)
	assert.Equal(t, 3, got.ProjectsPerRowDesktop)
	assert.Equal(t, 1, got.ProjectsPerRowMobile)
	assert.Equal(t, DefaultSections(), got.Sections)

	a, b := DefaultConfig(), DefaultConfig()
	a.Sections[0].Name = "changed"
	assert.Equal(t, "Sobre mí", b.Sections[0].Name)
}
