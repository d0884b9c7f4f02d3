package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amidelab/enumerator/internal/domain"
)

// maxLineBytes bounds a single reagent line
const maxLineBytes = 1 << 20

// ReagentLoaderConfig holds configuration for the reagent loader
type ReagentLoaderConfig struct {
	CacheTTL time.Duration
}

// ReagentLoader reads reagent pools in "<structure> <label>" line format
type ReagentLoader struct {
	engine   domain.ReactionEngine
	cache    domain.StructureCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReagentLoader creates a loader. cache may be nil.
func NewReagentLoader(
	engine domain.ReactionEngine,
	cache domain.StructureCache,
	logger *zap.Logger,
	config ReagentLoaderConfig,
) *ReagentLoader {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReagentLoader{
		engine:   engine,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Load reads the reagent file at path. The whole pool is validated before it
// is returned: any unparsable line fails the load.
func (l *ReagentLoader) Load(ctx context.Context, path string) (domain.ReagentPool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	defer f.Close()

	return l.LoadReader(ctx, path, f)
}

// LoadLines parses reagent lines that are already in memory
func (l *ReagentLoader) LoadLines(ctx context.Context, source string, lines []string) (domain.ReagentPool, error) {
	return l.LoadReader(ctx, source, strings.NewReader(strings.Join(lines, "\n")))
}

// LoadReader parses reagents from r; source names the input in errors
func (l *ReagentLoader) LoadReader(ctx context.Context, source string, r io.Reader) (domain.ReagentPool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var pool domain.ReagentPool
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, &domain.ParseError{Source: source, Line: lineNo, Token: fields[0], Reason: "missing label for structure"}
		}

		structure, err := l.parse(ctx, fields[0])
		if err != nil {
			reason := "invalid structure"
			if errors.Is(err, domain.ErrUnsupported) {
				reason = "unsupported structure"
			}
			return nil, &domain.ParseError{Source: source, Line: lineNo, Token: fields[0], Reason: reason, Err: err}
		}

		pool = append(pool, domain.Reagent{
			Structure: structure,
			Label:     fields[1],
			Text:      fields[0],
			Line:      lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIO, source, err)
	}

	l.logger.Debug("reagents loaded", zap.String("source", source), zap.Int("count", len(pool)))
	return pool, nil
}

// parse consults the structure cache before asking the engine
func (l *ReagentLoader) parse(ctx context.Context, text string) (domain.Structure, error) {
	if l.cache != nil {
		cached, err := l.cache.Get(ctx, text)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			l.logger.Warn("structure cache lookup failed", zap.String("structure", text), zap.Error(err))
		}
	}

	structure, err := l.engine.ParseStructure(text)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, errors.New("engine returned no structure")
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, text, structure, l.cacheTTL); err != nil {
			l.logger.Warn("structure cache store failed", zap.String("structure", text), zap.Error(err))
		}
	}
	return structure, nil
}
