package bootstrap_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Condfire/petadot/internal/bootstrap"
	"github.com/Condfire/petadot/internal/config"
	"github.com/Condfire/petadot/internal/domain"
)

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLogger_Level(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "warn", wantDebug: false, wantInfo: false},
		{level: "nonsense", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := bootstrap.NewLogger(&buf, tt.level)
			ctx := context.Background()

			assert.Equal(t, tt.wantDebug, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, log.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	bootstrap.NewLogger(&buf, "info").Info("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := bootstrap.OpenStore(context.Background(), config.Config{StoreDriver: "sqlite"}, quietLog())
	require.Error(t, err)
}

// TestMemoryStack drives the wired services end to end on the in-memory
// store, the same graph cmd/api builds.
func TestMemoryStack(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{StoreDriver: config.StoreDriverMemory, SlugMaxAttempts: 100, SlugWriteRetries: 3}

	store, err := bootstrap.OpenStore(ctx, cfg, quietLog())
	require.NoError(t, err)
	defer store.Close()
	require.Nil(t, store.Pool)
	require.NoError(t, bootstrap.Migrate(ctx, store, quietLog()))

	svcs := bootstrap.NewServices(store.Records, cfg, quietLog())
	p := domain.Principal{ID: uuid.New(), Role: domain.RoleUser}

	first, err := svcs.Records.Create(ctx, p, domain.Record{Collection: domain.CollectionOngs, Name: "Patinhas", City: "Recife", State: "PE"})
	require.NoError(t, err)
	second, err := svcs.Records.Create(ctx, p, domain.Record{Collection: domain.CollectionOngs, Name: "Patinhas", City: "Recife", State: "PE"})
	require.NoError(t, err)

	assert.Equal(t, "patinhas-recife-pe", first.Slug)
	assert.Equal(t, "patinhas-recife-pe-1", second.Slug)

	report, err := svcs.Backfill.Run(ctx, nil, 10)
	require.NoError(t, err)
	for _, c := range report.Collections {
		assert.Zero(t, c.Assigned+c.Failed, c.Collection)
	}
}
