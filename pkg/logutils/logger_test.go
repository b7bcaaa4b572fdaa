package logutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/flypanel/internal/core/logging"
)

func TestNew_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "flypanel.log")

	l, closer, err := New("debug", file)
	require.NoError(t, err)

	ctx := logging.WithPage(context.Background(), "/queue")
	l.Debug().Ctx(ctx).Msg("loaded")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"loaded"`)
	assert.Contains(t, string(data), `"page":"/queue"`)
}

func TestNew_LevelFilters(t *testing.T) {
	file := filepath.Join(t.TempDir(), "flypanel.log")

	l, closer, err := New("warn", file)
	require.NoError(t, err)
	l.Info().Msg("hidden")
	closer()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New("loud", "")
	assert.Error(t, err)
}
