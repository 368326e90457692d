package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
)

func okChecker(_ context.Context, _ string, _ time.Duration) (*model.Health, error) {
	return &model.Health{Status: "ok", Version: "1.0.0"}, nil
}

func downChecker(_ context.Context, _ string, _ time.Duration) (*model.Health, error) {
	return nil, errors.New("connection refused")
}

func newModel(t *testing.T, check HealthChecker) (Model, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := New(*model.DefaultAppConfig(), path, keys.DefaultKeyMap(), 80, 30).WithChecker(check)
	return m, path
}

func TestFormConfig(t *testing.T) {
	m, _ := newModel(t, okChecker)
	m.formBaseURL = " http://example.test:9000/ "
	m.formTimeout = "5s"
	m.formPerPage = "25"
	m.formInterval = "1m"

	cfg, err := m.formConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.API.PerPage)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)

	m.formPerPage = "500"
	_, err = m.formConfig()
	assert.Error(t, err)
}

func TestSaveAfterSuccessfulProbe(t *testing.T) {
	m, path := newModel(t, okChecker)
	cfg := m.Config()
	cfg.API.PerPage = 30
	m.mode = ModeTesting

	msg := m.probe(cfg, true)()
	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)

	m, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, ModeView, m.Mode())
	assert.Equal(t, 30, m.Config().API.PerPage)
	assert.Contains(t, m.View(), "Settings saved")

	saved, ok := cmd().(SavedMsg)
	require.True(t, ok)
	assert.Equal(t, 30, saved.Config.API.PerPage)

	loaded, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.API.PerPage)
}

func TestFailedProbeDoesNotSave(t *testing.T) {
	m, _ := newModel(t, downChecker)
	cfg := m.Config()
	cfg.API.PerPage = 30
	m.mode = ModeTesting

	m, cmd := m.Update(m.probe(cfg, true)())
	assert.Nil(t, cmd)
	assert.Equal(t, ModeResult, m.Mode())
	assert.Equal(t, model.DefaultPerPage, m.Config().API.PerPage)
	assert.Contains(t, m.View(), "Connection failed")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeView, m.Mode())
}

func TestTestConnectionKey(t *testing.T) {
	m, _ := newModel(t, okChecker)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	require.NotNil(t, cmd)
	assert.Equal(t, ModeTesting, m.Mode())
	assert.True(t, m.Busy())

	m, _ = m.Update(m.probe(m.Config(), false)())
	assert.Equal(t, ModeResult, m.Mode())
	assert.Contains(t, m.View(), "Server version: 1.0.0")
}

func TestStaleProbeIgnored(t *testing.T) {
	m, _ := newModel(t, okChecker)
	m.mode = ModeTesting
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ModeView, m.Mode())

	m, cmd := m.Update(m.probe(m.Config(), true)())
	assert.Nil(t, cmd)
	assert.Equal(t, ModeView, m.Mode())
}

func TestBack(t *testing.T) {
	m, _ := newModel(t, okChecker)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, DoneMsg{}, cmd())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://127.0.0.1:8000"))
	assert.Error(t, validateURL("localhost"))
	assert.Error(t, validateURL(""))

	assert.NoError(t, validateDuration("15s"))
	assert.Error(t, validateDuration("0s"))
	assert.Error(t, validateDuration("soon"))

	assert.NoError(t, validatePerPage("50"))
	assert.Error(t, validatePerPage("0"))
	assert.Error(t, validatePerPage("ten"))
}
