package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, any) error {
	f.calls++
	return errors.New("broker down")
}

func TestEmitLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := &failingPublisher{}

	Emit(context.Background(), pub, zap.New(core), AccountPurged, map[string]string{"principal": "p1"})

	assert.Equal(t, 1, pub.calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, AccountPurged, logs.All()[0].ContextMap()["event"])
}

func TestEmitNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, zap.NewNop(), AccountPurged, nil)
	})
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), SupportTicketCreated, nil))
}

func TestEnvelopeJSON(t *testing.T) {
	b, err := json.Marshal(NewEnvelope(ListingModerated, "no-reply@conexo.local", map[string]any{"id": 7}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, ListingModerated, decoded["type"])
	assert.Equal(t, "no-reply@conexo.local", decoded["from"])
	assert.NotEmpty(t, decoded["occurredAt"])
}
