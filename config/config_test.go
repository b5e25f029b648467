package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"trictrac/opponent"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("TRICTRAC_OPPONENT_STRATEGY", "default")
		t.Setenv("TRICTRAC_MAX_STEPS", "50")
		t.Setenv("TRICTRAC_SEED", "9")

		cfg, err := FromEnv()

		require.NoError(t, err)
		require.Equal(t, opponent.DefaultName, cfg.OpponentStrategy)
		require.Equal(t, 50, cfg.MaxSteps)
		require.Equal(t, uint64(9), cfg.Seed)
	})

	t.Run("invalid values are reported", func(t *testing.T) {
		t.Setenv("TRICTRAC_MAX_STEPS", "many")
		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("opponent_strategy: default\nmax_steps: 200\n"), 0o644))

	t.Run("file values over defaults", func(t *testing.T) {
		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, opponent.DefaultName, cfg.OpponentStrategy)
		require.Equal(t, 200, cfg.MaxSteps)
		require.Equal(t, 1000, cfg.OpponentMaxIterations, "Unset fields keep their defaults")
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("TRICTRAC_MAX_STEPS", "30")

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 30, cfg.MaxSteps)
		require.Equal(t, opponent.DefaultName, cfg.OpponentStrategy)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, fs.ErrNotExist)
		require.Implements(t, (*stackTracer)(nil), err, "Errors should carry a stack")
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Config{OpponentStrategy: "greedy", MaxSteps: 0, OpponentMaxIterations: -1, LogLevel: "loud"}
	err := cfg.Validate()

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 4, "Every invalid field should be reported")
}

func TestLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, Config{LogLevel: "debug"}.Level())
	require.Equal(t, zerolog.InfoLevel, Config{LogLevel: "loud"}.Level())
}

func TestLogger(t *testing.T) {
	logger := Config{LogLevel: "warn"}.Logger("env")
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}
