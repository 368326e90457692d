package categorymgr

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() Model {
	m := New(keys.DefaultKeyMap(), 80, 30)
	m.SetState(appsync.CategoryState{Items: []model.Category{
		model.Category{ID: 1, Name: "Work", Color: "#3B82F6"}.WithCount(3),
		{ID: 2, Name: "Home", Color: "#10B981"},
	}})
	return m
}

func TestListNavigationWraps(t *testing.T) {
	m := newTestModel()

	m, _ = m.Update(runes("j"))
	c, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Home", c.Name)
	assert.Equal(t, 0, c.Count(), "unknown counts read as zero")

	m, _ = m.Update(runes("j"))
	c, _ = m.Selected()
	assert.Equal(t, "Work", c.Name)

	m, _ = m.Update(runes("k"))
	c, _ = m.Selected()
	assert.Equal(t, "Home", c.Name)
}

func TestListShowsCounts(t *testing.T) {
	m := newTestModel()
	view := m.View()
	assert.Contains(t, view, "Work (3)")
	assert.Contains(t, view, "Home (0)")
}

func TestSetStateClampsCursor(t *testing.T) {
	m := newTestModel()
	m.selectedIdx = 1
	m.SetState(appsync.CategoryState{Items: []model.Category{{ID: 1, Name: "Work"}}})
	c, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(1), c.ID)
}

func TestDeleteConfirmWarnsAboutTodos(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(runes("d"))

	assert.True(t, m.Busy())
	assert.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "3 todos will be deleted")
	assert.Equal(t, int64(1), m.editingID)
}

func TestNewAndEditOpenForm(t *testing.T) {
	m := newTestModel()

	m, _ = m.Update(runes("n"))
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, model.DefaultCategoryColor, m.fb.color)
	m.fb.name = " Errands "
	msg := m.submit()()
	assert.Equal(t, CreateSubmittedMsg{Payload: model.CategoryCreate{
		Name: "Errands", Color: model.DefaultCategoryColor,
	}}, msg)

	m.mode = modeList
	m, _ = m.Update(runes("e"))
	assert.Equal(t, "Work", m.fb.name)
	upd, ok := m.submit()().(UpdateSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, int64(1), upd.ID)
	require.NotNil(t, upd.Payload.Name)
	assert.Equal(t, "Work", *upd.Payload.Name)
}

func TestFailedSaveReopensForm(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(runes("n"))
	m.fb.name = "Work"
	m.mode = modeSaving

	m.Fail("Category already exists")
	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, "Work", m.fb.name)
	assert.Contains(t, m.View(), "Category already exists")
}

func TestFailedDeleteReturnsToList(t *testing.T) {
	m := newTestModel()
	m, _ = m.Update(runes("d"))
	m.mode = modeSaving

	m.Fail("Cannot connect to server")
	assert.Equal(t, modeList, m.mode)
	assert.Contains(t, m.View(), "Cannot connect to server")

	m.Saved("Category deleted")
	assert.NotContains(t, m.View(), "Cannot connect")
	assert.Contains(t, m.View(), "Category deleted")
}

func TestBackClosesManager(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CategoryListCloseMsg{}, cmd())
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, validateColor("#a1B2c3"))
	assert.Error(t, validateColor("blue"))
	assert.Error(t, validateColor("#12345"))
}
