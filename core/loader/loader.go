package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature is a self-contained module that registers its own routes.
type Feature interface {
	// Name returns the unique feature name.
	Name() string
	// IsEnabled reports whether the feature should be loaded.
	IsEnabled() bool
	// Load registers the feature's routes on the router.
	Load(app fiber.Router) error
}

// Syncable is implemented by features that keep a server collection in
// sync. The manager fans lifecycle calls out to every syncable feature.
type Syncable interface {
	// StartSync activates the feature's sync session for a workspace.
	StartSync(workspace string)
	// StopSync tears the session down.
	StopSync()
	// SetWorkspace switches the active workspace scope.
	SetWorkspace(workspace string)
	// SetVisible gates polling on host view visibility.
	SetVisible(visible bool)
}

// Manager holds the registry of available features.
type Manager struct {
	features []Feature
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a feature to the registry.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// LoadAll loads every enabled feature's routes. Disabled features are
// skipped with a log line.
func (m *Manager) LoadAll(app fiber.Router) error {
	for _, f := range m.features {
		if !f.IsEnabled() {
			zap.L().Info("Skipping disabled feature", zap.String("feature", f.Name()))
			continue
		}
		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}
		zap.L().Info("Loaded feature", zap.String("feature", f.Name()))
	}
	return nil
}

// StartAll starts sync sessions on every enabled syncable feature.
func (m *Manager) StartAll(workspace string) {
	for _, f := range m.features {
		if s, ok := f.(Syncable); ok && f.IsEnabled() {
			s.StartSync(workspace)
		}
	}
}

// StopAll stops every syncable feature's session.
func (m *Manager) StopAll() {
	for _, f := range m.features {
		if s, ok := f.(Syncable); ok {
			s.StopSync()
		}
	}
}

// SetWorkspace switches the workspace scope on every syncable feature.
func (m *Manager) SetWorkspace(workspace string) {
	for _, f := range m.features {
		if s, ok := f.(Syncable); ok {
			s.SetWorkspace(workspace)
		}
	}
}

// SetVisible forwards a visibility change to every syncable feature.
func (m *Manager) SetVisible(visible bool) {
	for _, f := range m.features {
		if s, ok := f.(Syncable); ok {
			s.SetVisible(visible)
		}
	}
}
