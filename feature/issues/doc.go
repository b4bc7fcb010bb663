// Package issues synchronizes the issue tracker collection.
package issues
