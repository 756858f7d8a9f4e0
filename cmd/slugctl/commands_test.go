package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/service"
)

// run executes slugctl with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

// memoryEnv points store-backed commands at an empty in-memory store.
func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
}

// ---- pure commands ---------------------------------------------------------

func TestNormalize(t *testing.T) {
	out, err := run(t, "normalize", "--name", "São Paulo! Dog #1", "--city", "São Paulo", "--state", "SP", "--disambiguator", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "sao-paulo-dog-1-sao-paulo-sp-abc123", out)
}

func TestNormalize_FallsBackToType(t *testing.T) {
	out, err := run(t, "normalize", "--name", "!!!", "--type", "pet")
	require.NoError(t, err)
	assert.Equal(t, "pet", out)
}

func TestGenerate(t *testing.T) {
	out, err := run(t, "generate", "--name", "Feira de Adoção", "--type", "evento", "--city", "Recife", "--year", "2024", "--id", "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	require.NoError(t, err)
	assert.Equal(t, "feira-de-adocao-recife-2024-1b4e28ba", out)
}

// ---- store-backed commands -------------------------------------------------

func TestResolve_EmptyStoreReturnsBase(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "resolve", "--collection", "pets", "rex-sao-paulo-sp")
	require.NoError(t, err)
	assert.Equal(t, "rex-sao-paulo-sp", out)
}

func TestResolve_Rejects(t *testing.T) {
	memoryEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown collection", args: []string{"resolve", "--collection", "stories", "rex"}},
		{name: "malformed base", args: []string{"resolve", "--collection", "pets", "Rex!"}},
		{name: "bad exclude id", args: []string{"resolve", "--collection", "pets", "--exclude-id", "nope", "rex"}},
		{name: "missing collection", args: []string{"resolve", "rex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestBackfill_EmptyStore(t *testing.T) {
	memoryEnv(t)

	out, err := run(t, "backfill", "--collection", "pets", "--collection", "events")
	require.NoError(t, err)

	var report service.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Collections, 2)
	assert.Equal(t, domain.CollectionPets, report.Collections[0].Collection)
	assert.Equal(t, domain.CollectionEvents, report.Collections[1].Collection)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER=postgres")
}

func TestStoreCommands_NeedConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "backfill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

// ---- token -----------------------------------------------------------------

func TestToken_RoundTrip(t *testing.T) {
	memoryEnv(t)
	id := uuid.New()

	out, err := run(t, "token", "--sub", id.String(), "--role", "admin")
	require.NoError(t, err)

	p, err := auth.NewVerifier("test-secret").Principal(out)
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: id, Role: domain.RoleAdmin}, p)
}

func TestToken_Rejects(t *testing.T) {
	memoryEnv(t)

	_, err := run(t, "token", "--sub", "not-a-uuid")
	assert.Error(t, err)

	_, err = run(t, "token", "--sub", uuid.NewString(), "--role", "root")
	assert.Error(t, err)
}
