// Package personas synchronizes the persona collection.
//
// Personas carry a credentials map whose values arrive masked (ENC[...])
// from the list endpoint and resolved from the detail endpoint. The cache
// merges through a sticky policy so a background poll can never clobber a
// resolved credential the user just loaded.
package personas
