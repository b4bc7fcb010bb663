// Package projects synchronizes the project collection.
//
// Projects are the highest-churn entity type: the session polls every two
// seconds while the host view is visible. The feature exposes the cached
// collection, its trashed counterpart, and sync health over the local API,
// plus write operations that mutate the cache only after the server
// confirms.
package projects
