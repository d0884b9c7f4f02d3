package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amidelab/enumerator/config"
	"github.com/amidelab/enumerator/internal/domain"
	"github.com/amidelab/enumerator/internal/infrastructure/chem"
	"github.com/amidelab/enumerator/internal/usecase"
)

func newTestRunner(out, diag *bytes.Buffer) *Runner {
	engine := chem.NewEngine()
	logger := zap.NewNop()
	return NewRunner(
		usecase.NewReagentLoader(engine, nil, logger, usecase.ReagentLoaderConfig{}),
		usecase.NewEnumerationService(engine, logger),
		NewPrinter(out, diag),
		logger,
	)
}

func testConfig(t *testing.T, acids, amines string) config.Config {
	t.Helper()
	dir := t.TempDir()
	acidPath := filepath.Join(dir, "acids.smi")
	aminePath := filepath.Join(dir, "amines.smi")
	require.NoError(t, os.WriteFile(acidPath, []byte(acids), 0o600))
	require.NoError(t, os.WriteFile(aminePath, []byte(amines), 0o600))

	return config.Config{
		Input:    config.InputConfig{Acid: acidPath, Amine: aminePath},
		Reaction: config.ReactionConfig{Pattern: domain.AmideCouplingPattern},
	}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("streams accepted and rejected pairs", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "OC(=O)C acid1\n", "NCC amine1\nCNC dimethylamine\n")

		summary, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, domain.Summary{Pairs: 2, Accepted: 1, Rejected: 1}, summary)
		assert.Equal(t, "O=C(NCC)C acid1 + amine1\n", out.String())
		assert.Contains(t, diag.String(), "Read 1 acids and 2 amine reagents\nGot 0 from ")
	})

	t.Run("empty pool still reports counts", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "", "NCC amine1\n")

		summary, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		require.NoError(t, err)
		assert.Zero(t, summary.Pairs)
		assert.Empty(t, out.String())
		assert.Equal(t, "Read 0 acids and 1 amine reagents\n", diag.String())
	})

	t.Run("malformed line aborts before any output", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "OC(=O)C acid1\n", "NCC amine1\nN(C bad\n")

		_, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrParse))
		assert.Empty(t, out.String())
		assert.Empty(t, diag.String())
	})

	t.Run("missing input file is an IO error", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "OC(=O)C acid1\n", "")
		cfg.Input.Amine = filepath.Join(t.TempDir(), "absent.smi")

		_, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		assert.ErrorIs(t, err, domain.ErrIO)
		assert.Empty(t, diag.String())
	})

	t.Run("missing input flag is a config error", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "", "")
		cfg.Input.Acid = ""

		_, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		assert.ErrorIs(t, err, domain.ErrConfig)
	})

	t.Run("invalid reaction is a config error", func(t *testing.T) {
		var out, diag bytes.Buffer
		cfg := testConfig(t, "OC(=O)C acid1\n", "NCC amine1\n")
		cfg.Reaction.Pattern = "[C:1]>>[C:1]"

		_, err := newTestRunner(&out, &diag).Run(ctx, cfg)
		assert.ErrorIs(t, err, domain.ErrConfig)
		assert.Empty(t, diag.String())
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(UsageError(errors.New("missing --acid"))))
	assert.Equal(t, ExitFailure, ExitCode(domain.ErrIO))
	assert.Equal(t, ExitFailure, ExitCode(&domain.ParseError{Source: "a", Line: 1}))

	wrapped := UsageError(domain.ErrConfig)
	assert.ErrorIs(t, wrapped, domain.ErrConfig)
	assert.Equal(t, domain.ErrConfig.Error(), wrapped.Error())
}
