package notify

import (
	"context"
	"testing"

	"github.com/Domenick1991/skydispatch/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), kafka.Event{
		Type:      "transfer_request",
		ActorName: "alice",
		TargetID:  "u-bob",
		EntityID:  "f1",
		Summary:   "Transfer request AAL1 -> bob",
	}))
	require.NoError(t, s.Send(context.Background(), kafka.Event{Type: "login"}))

	sent := logs.FilterMessage("notify dispatcher").All()
	require.Len(t, sent, 1)
	assert.Equal(t, "u-bob", sent[0].ContextMap()["to"])
	assert.Equal(t, 1, logs.FilterMessage("skip notification without recipient").Len())
}
