package projects

import (
	"github.com/gofiber/fiber/v2"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the projects feature around a wired service.
func NewFeature(service *Service) *Feature {
	return &Feature{service: service, handler: NewHandler(service)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "projects"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// StartSync activates the sync session.
func (f *Feature) StartSync(workspace string) {
	f.service.StartSync(workspace)
}

// StopSync tears the sync session down.
func (f *Feature) StopSync() {
	f.service.StopSync()
}

// SetWorkspace switches the workspace scope.
func (f *Feature) SetWorkspace(workspace string) {
	f.service.SetWorkspace(workspace)
}

// SetVisible gates polling on host view visibility.
func (f *Feature) SetVisible(visible bool) {
	f.service.SetVisible(visible)
}

// Service exposes the feature's service for wiring.
func (f *Feature) Service() *Service {
	return f.service
}
