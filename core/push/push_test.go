package push

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDeliversToSubscribers(t *testing.T) {
	fake := NewFake()

	var got []Event
	sub, err := fake.Subscribe("project:updated", func(ev Event) {
		got = append(got, ev)
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, fake.Emit("project:updated", map[string]string{"_id": "p1"}))
	require.NoError(t, fake.Emit("project:created", map[string]string{"_id": "p2"}))

	require.Len(t, got, 1)
	assert.Equal(t, "project:updated", got[0].Name)
	assert.JSONEq(t, `{"_id":"p1"}`, string(got[0].Payload))
}

func TestFakeMultipleSubscribers(t *testing.T) {
	fake := NewFake()

	var a, b int
	subA, _ := fake.Subscribe("ping", func(Event) { a++ })
	subB, _ := fake.Subscribe("ping", func(Event) { b++ })
	defer subA.Close()
	defer subB.Close()

	require.NoError(t, fake.Emit("ping", nil))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	fake := NewFake()

	var count int
	sub, _ := fake.Subscribe("ping", func(Event) { count++ })

	require.NoError(t, fake.Emit("ping", nil))
	require.NoError(t, sub.Close())
	require.NoError(t, fake.Emit("ping", nil))

	assert.Equal(t, 1, count)
}

func TestEmitPayloadForms(t *testing.T) {
	fake := NewFake()

	var payloads []json.RawMessage
	sub, _ := fake.Subscribe("ev", func(ev Event) {
		payloads = append(payloads, ev.Payload)
	})
	defer sub.Close()

	// Raw JSON passes through untouched
	require.NoError(t, fake.Emit("ev", json.RawMessage(`{"a":1}`)))
	// Byte slices are treated as raw JSON
	require.NoError(t, fake.Emit("ev", []byte(`{"b":2}`)))
	// Anything else is marshalled
	require.NoError(t, fake.Emit("ev", map[string]int{"c": 3}))
	// Nil stays nil
	require.NoError(t, fake.Emit("ev", nil))

	require.Len(t, payloads, 4)
	assert.JSONEq(t, `{"a":1}`, string(payloads[0]))
	assert.JSONEq(t, `{"b":2}`, string(payloads[1]))
	assert.JSONEq(t, `{"c":3}`, string(payloads[2]))
	assert.Nil(t, payloads[3])
}

func TestParseFrame(t *testing.T) {
	ev, err := parseFrame([]byte(`{"event":"run:created","payload":{"_id":"r1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "run:created", ev.Name)
	assert.JSONEq(t, `{"_id":"r1"}`, string(ev.Payload))

	_, err = parseFrame([]byte(`{"payload":{}}`))
	assert.Error(t, err)

	_, err = parseFrame([]byte(`not json`))
	assert.Error(t, err)
}
