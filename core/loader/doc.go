// Package loader provides the plugin-like feature loading system.
//
// It allows the application to register and initialize features (modules) dynamically.
// Each feature implements the Feature interface, which defines its route
// registration logic; features that synchronize a server collection also
// implement Syncable, which defines their sync lifecycle hooks.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager struct holds the registry of available features. It handles:
//   - Registration of features via Register()
//   - Initialization and loading of enabled features via LoadAll()
//   - Fan-out of sync lifecycle calls (StartAll, StopAll, SetWorkspace)
//
// This architecture promotes modularity, allowing each entity type to be
// developed and tested in isolation.
package loader
