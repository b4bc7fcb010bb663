// Package push implements the real-time push collaborator.
//
// The transport delivers named events with a JSON payload, at-most-once and
// with no ordering guarantee relative to concurrent fetches. Event names
// follow "<entity>:<verb>", e.g. "project:updated"; payloads contain at
// least the entity id and may carry a "workspace" field used to filter
// events that do not match the active scope.
//
// Source is the consumer-facing contract. Socket implements it over a
// websocket connection; Fake is an in-memory implementation for tests and
// offline operation. Transport-level reconnection and backoff are the
// transport's own responsibility; this package only announces the
// Connected pseudo-event so sessions can re-subscribe.
package push
