// Package rollup recomputes the per-property and per-company summaries from
// every account's processed rows. Each run is a full recomputation: the
// summary directories are discarded and rewritten as a whole.
package rollup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/praveensiddu/rentledger/internal/classify"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/entities"
	"github.com/praveensiddu/rentledger/internal/fsutil"
	"github.com/praveensiddu/rentledger/internal/model"
)

// Engine drives the aggregation passes.
type Engine struct {
	cfg  *config.Config
	ents *entities.Set
	log  zerolog.Logger
}

// NewEngine creates a rollup Engine.
func NewEngine(cfg *config.Config, ents *entities.Set, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, ents: ents, log: log}
}

// Recompute rebuilds every summary file: the property rollup with its
// reverse index, then the company rollup (which reads the property results),
// then the rent tracker.
func (e *Engine) Recompute() error {
	props := newPropertyRollup()
	comps := newCompanyRollup()
	tracker := newRentTracker()

	for _, account := range e.ents.AccountNames() {
		rows, err := classify.ReadProcessed(e.cfg.ProcessedPath(account))
		if err != nil {
			return err
		}
		for _, row := range rows {
			props.fold(e, account, row)
			comps.fold(row)
			tracker.fold(e, row)
		}
	}

	props.finalize(e)
	comps.finalize(e, props)

	if err := e.writePropertySummaries(props); err != nil {
		return err
	}
	if err := e.writeCompanySummaries(comps); err != nil {
		return err
	}
	if err := e.writeRentTracker(tracker); err != nil {
		return err
	}

	e.log.Info().
		Int("properties", len(props.totals)).
		Int("companies", len(comps.totals)).
		Msg("recomputed summaries")
	return nil
}

// resolveProperties expands a row's target to concrete property names: the
// row's own property, or its group's members. Rows with neither resolve to
// nothing.
func (e *Engine) resolveProperties(row model.Row) []string {
	if p := strings.ToLower(strings.TrimSpace(row.Property)); p != "" {
		return []string{p}
	}
	if g := strings.TrimSpace(row.Group); g != "" {
		return e.ents.GroupProperties(g)
	}
	return nil
}

func (e *Engine) writePropertySummaries(pr *propertyRollup) error {
	if err := resetDir(e.cfg.RentalSummaryDir()); err != nil {
		return err
	}
	if err := resetDir(e.cfg.RentalReverseDir()); err != nil {
		return err
	}

	for name, totals := range pr.totals {
		data, err := marshalTotals(totals)
		if err != nil {
			return err
		}
		path := filepath.Join(e.cfg.RentalSummaryDir(), name+".yaml")
		if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return err
		}

		if rev := pr.reverse[name]; len(rev) > 0 {
			revData, err := marshalReverse(rev)
			if err != nil {
				return err
			}
			revPath := filepath.Join(e.cfg.RentalReverseDir(), name+".yaml")
			if err := fsutil.WriteFileAtomic(revPath, revData, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) writeCompanySummaries(cr *companyRollup) error {
	if err := resetDir(e.cfg.CompanySummaryDir()); err != nil {
		return err
	}
	for name, totals := range cr.totals {
		data, err := marshalTotals(totals)
		if err != nil {
			return err
		}
		path := filepath.Join(e.cfg.CompanySummaryDir(), name+".yaml")
		if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) writeRentTracker(rt *rentTracker) error {
	data, err := marshalRentTracker(rt.rows())
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(e.cfg.RentTrackerPath(), data, 0o644)
}

// resetDir empties and recreates a summary output directory so stale files
// from a previous run cannot survive a recompute.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
