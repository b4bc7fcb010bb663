// Package api implements the REST fetch collaborator.
//
// The Client wraps net/http with bearer authentication and workspace scope
// stamping: every request carries the active workspace id so the server can
// partition results. The wire contract is JSON entity documents with a
// stable "_id".
//
// # Collections
//
// Collection adapts the client to one entity type's endpoints:
//
//	col := api.NewCollection[Project](client, "projects")
//	docs, err := col.List(ctx)   // GET /projects
//	doc, err := col.Get(ctx, id) // GET /projects/<id>, may resolve more fields
//
// The detail endpoint may return fields in a more resolved (decrypted) form
// than the list endpoint, which is why cache writes merge rather than
// overwrite.
package api
