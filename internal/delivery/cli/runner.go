package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amidelab/enumerator/config"
	"github.com/amidelab/enumerator/internal/domain"
	"github.com/amidelab/enumerator/internal/usecase"
)

// Runner drives one command-line enumeration: load both pools, report
// their sizes, then stream every pair to the printer
type Runner struct {
	loader  *usecase.ReagentLoader
	service *usecase.EnumerationService
	printer *Printer
	logger  *zap.Logger
}

// NewRunner creates a runner with its dependencies
func NewRunner(
	loader *usecase.ReagentLoader,
	service *usecase.EnumerationService,
	printer *Printer,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		loader:  loader,
		service: service,
		printer: printer,
		logger:  logger,
	}
}

// Run executes the enumeration described by cfg. Nothing is printed unless
// the transform compiles and both pools load.
func (r *Runner) Run(ctx context.Context, cfg config.Config) (domain.Summary, error) {
	if err := cfg.ValidateEnumerate(); err != nil {
		return domain.Summary{}, err
	}

	transform, err := r.service.CompileTransform(cfg.Reaction.Pattern)
	if err != nil {
		return domain.Summary{}, err
	}

	acids, err := r.loader.Load(ctx, cfg.Input.Acid)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("load acids: %w", err)
	}
	amines, err := r.loader.Load(ctx, cfg.Input.Amine)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("load amines: %w", err)
	}

	if err := r.printer.Loaded(len(acids), len(amines)); err != nil {
		return domain.Summary{}, fmt.Errorf("write diagnostics: %w", err)
	}

	r.logger.Info("enumerating",
		zap.String("reaction", cfg.Reaction.Pattern),
		zap.Int("acids", len(acids)),
		zap.Int("amines", len(amines)))

	return r.service.Run(ctx, acids, amines, transform, r.printer)
}
