package entity

import (
	"encoding/hex"
	"time"
)

// Times carries the candidate ordering fields of a record. Any of them may
// be absent depending on the record's state (a queued run has no finish
// time, a legacy document may predate createdAt stamping).
type Times struct {
	FinishedAt *time.Time
	StartedAt  *time.Time
	CreatedAt  *time.Time
}

// EffectiveTime returns the instant used to order a record, with a fixed
// priority: finishedAt, then startedAt, then createdAt, then the timestamp
// embedded in the object id. Records with none of these sort to the zero
// time, i.e. last in a newest-first ordering.
func EffectiveTime(t Times, id string) time.Time {
	switch {
	case t.FinishedAt != nil && !t.FinishedAt.IsZero():
		return *t.FinishedAt
	case t.StartedAt != nil && !t.StartedAt.IsZero():
		return *t.StartedAt
	case t.CreatedAt != nil && !t.CreatedAt.IsZero():
		return *t.CreatedAt
	}
	if ts, ok := TimeFromObjectID(id); ok {
		return ts
	}
	return time.Time{}
}

// TimeFromObjectID extracts the creation instant embedded in a Mongo-style
// object id: the first four bytes are big-endian seconds since the epoch.
// Returns false for ids that are not at least eight hex characters.
func TimeFromObjectID(id string) (time.Time, bool) {
	if len(id) < 8 {
		return time.Time{}, false
	}
	raw, err := hex.DecodeString(id[:8])
	if err != nil {
		return time.Time{}, false
	}
	secs := int64(raw[0])<<24 | int64(raw[1])<<16 | int64(raw[2])<<8 | int64(raw[3])
	return time.Unix(secs, 0).UTC(), true
}
