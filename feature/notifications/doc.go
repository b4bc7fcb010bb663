// Package notifications synchronizes the notification feed.
//
// The feed is mostly push-fed; a slow poll backstops missed events, and
// propagation marks the cache stale when a run finishes so the next read
// picks up the server-generated notification.
package notifications
