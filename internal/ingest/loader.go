package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arwells-research/satz-lifetime-diagnostics/internal/cache"
	"github.com/arwells-research/satz-lifetime-diagnostics/internal/model"
)

// Loader reads input tables from disk with an optional cache of the
// normalized records, keyed by path, size, and mtime. A nil cache loads
// straight from disk every time.
type Loader struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewLoader creates a new Loader backed by c
func NewLoader(c cache.Cache, ttl time.Duration) *Loader {
	return &Loader{
		cache: c,
		ttl:   ttl,
	}
}

type decayEnvelope struct {
	Records []model.DecayRecord `json:"records"`
	Skips   []RowSkip           `json:"skips,omitempty"`
}

type transitionEnvelope struct {
	Records []model.TransitionRecord `json:"records"`
	Skips   []RowSkip                `json:"skips,omitempty"`
}

// DecayTable loads and normalizes the half-life table at path.
func (l *Loader) DecayTable(path string) ([]model.DecayRecord, []RowSkip, error) {
	key := l.key(path)

	if key != "" {
		if data, hit := l.cache.Get(key); hit {
			var env decayEnvelope
			if err := json.Unmarshal(data, &env); err == nil {
				return env.Records, env.Skips, nil
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open decay table: %w", err)
	}
	defer f.Close()

	records, skips, err := ReadDecayTable(f, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	if key != "" {
		if data, err := json.Marshal(decayEnvelope{Records: records, Skips: skips}); err == nil {
			_ = l.cache.Set(key, data, l.ttl)
		}
	}
	return records, skips, nil
}

// TransitionTable loads and normalizes the logft table at path.
func (l *Loader) TransitionTable(path string) ([]model.TransitionRecord, []RowSkip, error) {
	key := l.key(path)

	if key != "" {
		if data, hit := l.cache.Get(key); hit {
			var env transitionEnvelope
			if err := json.Unmarshal(data, &env); err == nil {
				return env.Records, env.Skips, nil
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open transition table: %w", err)
	}
	defer f.Close()

	records, skips, err := ReadTransitionTable(f, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	if key != "" {
		if data, err := json.Marshal(transitionEnvelope{Records: records, Skips: skips}); err == nil {
			_ = l.cache.Set(key, data, l.ttl)
		}
	}
	return records, skips, nil
}

// key returns the cache key for path, or "" when caching is off or the
// file cannot be stat'ed (the open path reports the real error).
func (l *Loader) key(path string) string {
	if l.cache == nil {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ""
	}
	return cache.TableKey(abs, info.ModTime(), info.Size())
}
