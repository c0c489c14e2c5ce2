package profile

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"fjacquet/rabbit/cmd/root"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "rabbit.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProfileCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "create", "delete", "privacy", "passwd"} {
		assert.True(t, names[want], want)
	}
}

func TestCreateListDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var out bytes.Buffer

	require.NoError(t, List(ctx, s, &out))
	assert.Contains(t, out.String(), "No profiles")

	require.NoError(t, Create(ctx, s, "home", &out))
	assert.Error(t, Create(ctx, s, "HOME", &out))

	out.Reset()
	require.NoError(t, List(ctx, s, &out))
	assert.Equal(t, "home\n", out.String())

	require.NoError(t, Delete(ctx, s, "home", "", &out))
	assert.ErrorIs(t, Delete(ctx, s, "home", "", &out), store.ErrNotFound)
}

func TestPrivacy(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var out bytes.Buffer
	require.NoError(t, Create(ctx, s, "home", &out))

	assert.ErrorIs(t, SetPrivacy(ctx, s, "home", true, "", "", &out), store.ErrInvalid)
	require.NoError(t, SetPrivacy(ctx, s, "home", true, "", "hunter2", &out))

	out.Reset()
	require.NoError(t, List(ctx, s, &out))
	assert.Equal(t, "home (private)\n", out.String())

	assert.ErrorIs(t, Delete(ctx, s, "home", "", &out), root.ErrAccessDenied)
	assert.ErrorIs(t, SetPrivacy(ctx, s, "home", false, "nope", "", &out), root.ErrAccessDenied)
	require.NoError(t, SetPrivacy(ctx, s, "home", false, "hunter2", "", &out))
	require.NoError(t, Delete(ctx, s, "home", "", &out))
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "true", onOff("on"))
	assert.Equal(t, "false", onOff("off"))
	assert.Equal(t, "1", onOff("1"))
}
