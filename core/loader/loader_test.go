package loader_test

import (
	"errors"
	"testing"

	"dash-sync/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeature struct {
	name    string
	enabled bool
	loadErr error

	loaded     bool
	started    []string
	stopped    int
	workspaces []string
	visibility []bool
}

func (f *fakeFeature) Name() string {
	return f.name
}

func (f *fakeFeature) IsEnabled() bool {
	return f.enabled
}

func (f *fakeFeature) Load(app fiber.Router) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = true
	return nil
}

func (f *fakeFeature) StartSync(workspace string) {
	f.started = append(f.started, workspace)
}

func (f *fakeFeature) StopSync() {
	f.stopped++
}

func (f *fakeFeature) SetWorkspace(workspace string) {
	f.workspaces = append(f.workspaces, workspace)
}

func (f *fakeFeature) SetVisible(visible bool) {
	f.visibility = append(f.visibility, visible)
}

func TestLoadAllSkipsDisabled(t *testing.T) {
	enabled := &fakeFeature{name: "enabled", enabled: true}
	disabled := &fakeFeature{name: "disabled", enabled: false}

	mgr := loader.NewManager()
	mgr.Register(enabled)
	mgr.Register(disabled)

	require.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
}

func TestLoadAllWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeFeature{name: "failing", enabled: true, loadErr: boom}

	mgr := loader.NewManager()
	mgr.Register(failing)

	err := mgr.LoadAll(fiber.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

func TestSyncLifecycleFanOut(t *testing.T) {
	a := &fakeFeature{name: "a", enabled: true}
	b := &fakeFeature{name: "b", enabled: true}
	disabled := &fakeFeature{name: "c", enabled: false}

	mgr := loader.NewManager()
	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(disabled)

	mgr.StartAll("ws-1")
	assert.Equal(t, []string{"ws-1"}, a.started)
	assert.Equal(t, []string{"ws-1"}, b.started)
	// Disabled features do not start
	assert.Empty(t, disabled.started)

	mgr.SetWorkspace("ws-2")
	assert.Equal(t, []string{"ws-2"}, a.workspaces)

	mgr.SetVisible(false)
	assert.Equal(t, []bool{false}, a.visibility)

	mgr.StopAll()
	assert.Equal(t, 1, a.stopped)
	assert.Equal(t, 1, b.stopped)
}
