package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/logger"
)

func TestNatsChannelRegistersHandlersBeforeStart(t *testing.T) {
	ch := newNatsChannel(Config{Source: SourceNats, NatsURL: "nats://127.0.0.1:39999"}, logger.NewTestLogger())

	ch.Subscribe(DefaultTopic, func([]byte) {})
	ch.Subscribe("system_errors", func([]byte) {})

	assert.ElementsMatch(t, []string{DefaultTopic, "system_errors"}, ch.topics())
	assert.False(t, ch.State().Connected)
}

func TestNatsChannelStartStopWithoutServer(t *testing.T) {
	cfg := &Config{Source: SourceNats, NatsURL: "nats://127.0.0.1:39999"}
	require.NoError(t, cfg.Validate())

	ch := newNatsChannel(*cfg, logger.NewTestLogger())
	ch.Subscribe(DefaultTopic, func([]byte) {})

	// The client retries in the background, so Start succeeds with no
	// server listening and Stop shuts the retry loop down.
	require.NoError(t, ch.Start(context.Background()))
	assert.False(t, ch.State().Connected)

	require.NoError(t, ch.Stop())
	require.NoError(t, ch.Stop())
}
