package supervisor

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiPublisher_FansOutInOrderAndSkipsNil(t *testing.T) {
	a, b := NewMemoryPublisher(), NewMemoryPublisher()
	m := MultiPublisher{a, nil, b}

	m.Publish(Event{Name: EventInstallOK})
	m.Publish(Event{Name: EventDaemonRunning})

	assert.Equal(t, []string{EventInstallOK, EventDaemonRunning}, a.Names())
	assert.Equal(t, a.Names(), b.Names())
}

func TestLogPublisher_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))

	p.Publish(Event{Name: EventPullProgress, Model: "m:1b", Fields: map[string]any{"line": "pulling manifest"}})
	p.Publish(Event{Name: EventPullFailed, Model: "m:1b", Fields: map[string]any{"exit_code": 1}})
	p.Publish(Event{Name: EventShutdown})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var recs []map[string]any
	for _, l := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec))
		recs = append(recs, rec)
	}
	assert.Equal(t, "debug", recs[0]["level"])
	assert.Equal(t, "pull_progress", recs[0]["event"])
	assert.Equal(t, "pulling manifest", recs[0]["line"])
	assert.Equal(t, "m:1b", recs[0]["model"])
	assert.Equal(t, "warn", recs[1]["level"])
	assert.EqualValues(t, 1, recs[1]["exit_code"])
	assert.Equal(t, "info", recs[2]["level"])
	assert.NotContains(t, recs[2], "model")
}

func TestPhaseTerminal(t *testing.T) {
	assert.True(t, PhaseReady.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	for _, p := range []Phase{PhaseNotStarted, PhaseCheckingInstall, PhaseSpawning, PhaseAwaitingHealth, PhasePulling} {
		assert.False(t, p.Terminal(), "phase %s", p)
	}
}
