package promo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

const (
	minCodeLength = 8
	maxCodeLength = 10
)

// validator implements Validator. The code sets are swapped wholesale
// on reload, so lookups only take a read lock for the snapshot.
type validator struct {
	mu         sync.RWMutex
	codeSets   []CodeSet
	minMatches int
	loader     Loader
	filePaths  []string
	logger     zerolog.Logger

	quit chan struct{}
	done chan struct{}
}

// ValidatorConfig holds configuration for the promo validator.
type ValidatorConfig struct {
	// FilePaths is the list of code files to load.
	FilePaths []string

	// MinMatches is how many files a code must appear in. Default 2.
	MinMatches int

	// RefreshInterval is how often the code files are reloaded. Zero
	// disables the reload loop.
	RefreshInterval time.Duration
}

// NewValidator creates a promo validator, loading every code file
// concurrently. With a refresh interval configured, the files are
// reloaded in the background so rotated code lists take effect
// without a restart.
func NewValidator(ctx context.Context, cfg *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	logger = logger.With().Str("component", "promo-validator").Logger()

	minMatches := cfg.MinMatches
	if minMatches <= 0 {
		minMatches = 2
	}

	logger.Info().
		Int("file_count", len(cfg.FilePaths)).
		Int("min_matches", minMatches).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("initialising promo validator")

	v := &validator{
		minMatches: minMatches,
		loader:     loader,
		filePaths:  cfg.FilePaths,
		logger:     logger,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	sets, total, err := v.loadSets(ctx)
	if err != nil {
		return nil, err
	}
	v.codeSets = sets

	logger.Info().Int("total_codes", total).Msg("promo validator initialised")

	if cfg.RefreshInterval > 0 {
		go v.refreshLoop(cfg.RefreshInterval)
	} else {
		close(v.done)
	}

	return v, nil
}

// loadSets loads every code file concurrently and returns the sets in
// file order together with the total code count.
func (v *validator) loadSets(ctx context.Context) ([]CodeSet, int, error) {
	type loadResult struct {
		set CodeSet
		err error
	}

	results := make([]loadResult, len(v.filePaths))
	var wg sync.WaitGroup
	for i, path := range v.filePaths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			set, err := v.loader.Load(ctx, path)
			results[i] = loadResult{set: set, err: err}
		}(i, path)
	}
	wg.Wait()

	sets := make([]CodeSet, 0, len(v.filePaths))
	total := 0
	for i, result := range results {
		if result.err != nil {
			v.logger.Error().Err(result.err).Str("file", v.filePaths[i]).Msg("failed to load promo file")
			return nil, 0, fmt.Errorf("failed to load promo file %s: %w", v.filePaths[i], result.err)
		}
		sets = append(sets, result.set)
		total += result.set.Size()
		v.logger.Info().
			Str("file", v.filePaths[i]).
			Int("size", result.set.Size()).
			Msg("promo file loaded")
	}

	return sets, total, nil
}

// refreshLoop reloads the code files on the configured interval. A
// failed reload keeps the previous sets in place.
func (v *validator) refreshLoop(interval time.Duration) {
	defer close(v.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			sets, total, err := v.loadSets(ctx)
			cancel()
			if err != nil {
				v.logger.Warn().Err(err).Msg("promo reload failed, keeping previous code sets")
				continue
			}

			v.mu.Lock()
			v.codeSets = sets
			v.mu.Unlock()

			v.logger.Info().Int("total_codes", total).Msg("promo code sets reloaded")
		case <-v.quit:
			return
		}
	}
}

// Validate checks the code length and its presence across code files.
func (v *validator) Validate(ctx context.Context, code string) error {
	if len(code) < minCodeLength || len(code) > maxCodeLength {
		v.logger.Debug().
			Str("promo_code", code).
			Int("length", len(code)).
			Msg("promo code length invalid")
		return model.ErrInvalidPromoLength
	}

	v.mu.RLock()
	sets := v.codeSets
	v.mu.RUnlock()

	matches := v.countMatches(ctx, sets, code)
	if matches < v.minMatches {
		v.logger.Debug().
			Str("promo_code", code).
			Int("match_count", matches).
			Msg("promo code not found in enough files")
		return model.ErrInvalidPromoCode
	}

	v.logger.Debug().
		Str("promo_code", code).
		Int("match_count", matches).
		Msg("promo code validated")

	return nil
}

// countMatches checks every code set concurrently and stops counting
// once the required number of matches is reached or becomes
// impossible.
func (v *validator) countMatches(ctx context.Context, sets []CodeSet, code string) int {
	resultChan := make(chan bool, len(sets))
	for _, set := range sets {
		go func(s CodeSet) {
			select {
			case resultChan <- s.Contains(code):
			case <-ctx.Done():
			}
		}(set)
	}

	matches := 0
	for checked := 0; checked < len(sets); checked++ {
		select {
		case found := <-resultChan:
			if found {
				matches++
				if matches >= v.minMatches {
					return matches
				}
			}
			remaining := len(sets) - checked - 1
			if matches+remaining < v.minMatches {
				return matches
			}
		case <-ctx.Done():
			return matches
		}
	}

	return matches
}

// Close stops the reload loop and drops the code sets so their memory
// can be reclaimed.
func (v *validator) Close() error {
	select {
	case <-v.quit:
	default:
		close(v.quit)
	}
	<-v.done

	v.mu.Lock()
	v.codeSets = nil
	v.mu.Unlock()

	v.logger.Info().Msg("promo validator closed")
	return nil
}
