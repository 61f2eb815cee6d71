package updater

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domain "github.com/oshokin/altsource-updater/internal/domain/manifest"
	"github.com/oshokin/altsource-updater/internal/domain/source"
	"github.com/oshokin/altsource-updater/internal/logger"
)

// observedContext returns a context whose logger records every entry.
func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

func messages(logs *observer.ObservedLogs) []string {
	result := make([]string, 0, logs.Len())
	for _, entry := range logs.All() {
		result = append(result, entry.Message)
	}

	return result
}

// TestReconcile_AddsAndIsIdempotent covers creation, the "new" label and a repeated call.
func TestReconcile_AddsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	m := domain.New()
	src := mustSource(t, "X", "o/x", ".ipa")
	release := source.Release{Version: "1.0", DownloadURL: "https://x/X.ipa", Size: 3, Date: "d", Description: "c"}

	require.True(t, reconcile(ctx, m, src, release))
	require.Equal(t, []string{"App added to manifest", "App updated"}, messages(logs))
	require.Equal(t, "new", logs.FilterMessage("App updated").All()[0].ContextMap()["from"])

	before, err := json.Marshal(m)
	require.NoError(t, err)

	require.False(t, reconcile(ctx, m, src, release))
	require.Equal(t, 1, logs.FilterMessage("App already up to date").Len())
	require.Equal(t, 1, logs.FilterMessage("App updated").Len())

	after, err := json.Marshal(m)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

// TestReconcile_OverwritesOnlyReleaseFields checks that unrelated fields survive an update.
func TestReconcile_OverwritesOnlyReleaseFields(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(
		`{"apps":[{"name":"X","developerName":"Dev","version":"1.0","size":1,"tintColor":"ff0000"}]}`), &m))

	release := source.Release{Version: "1.1", DownloadURL: "https://x/X.ipa", Size: 9, Date: "2025", Description: ""}
	require.True(t, reconcile(ctx, &m, mustSource(t, "X", "o/x", ".ipa"), release))

	updated := logs.FilterMessage("App updated").All()
	require.Len(t, updated, 1)
	require.Equal(t, "1.0", updated[0].ContextMap()["from"])
	require.Equal(t, "1.1", updated[0].ContextMap()["to"])
	require.Zero(t, logs.FilterMessage("App added to manifest").Len())

	entry, ok := m.Find("X")
	require.True(t, ok)
	require.True(t, entry.IsCurrent("1.1"))

	data, err := json.Marshal(&m)
	require.NoError(t, err)
	require.Equal(t,
		`{"apps":[{"name":"X","developerName":"Dev","version":"1.1","size":9,"tintColor":"ff0000",`+
			`"downloadURL":"https://x/X.ipa","versionDate":"2025","versionDescription":""}]}`,
		string(data))
}

// TestReconcile_NonStringVersionIsReplaced shows the raw previous value and overwrites it.
func TestReconcile_NonStringVersionIsReplaced(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(`{"apps":[{"name":"X","version":1.0}]}`), &m))

	release := source.Release{Version: "1.0", DownloadURL: "u", Size: 1, Date: "d", Description: "c"}
	require.True(t, reconcile(ctx, &m, mustSource(t, "X", "o/x", ".ipa"), release))

	updated := logs.FilterMessage("App updated").All()
	require.Len(t, updated, 1)
	require.Equal(t, "1.0", updated[0].ContextMap()["from"])

	data, err := json.Marshal(&m)
	require.NoError(t, err)
	require.Equal(t,
		`{"apps":[{"name":"X","version":"1.0","downloadURL":"u","size":1,"versionDate":"d","versionDescription":"c"}]}`,
		string(data))
}
