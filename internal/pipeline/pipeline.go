// Package pipeline orchestrates the three stages and serializes writes per
// account. Stage files carry no locks of their own; every mutation of an
// account's files goes through the runner's per-account mutex.
package pipeline

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/praveensiddu/rentledger/internal/classify"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/entities"
	"github.com/praveensiddu/rentledger/internal/model"
	"github.com/praveensiddu/rentledger/internal/normalizer"
	"github.com/praveensiddu/rentledger/internal/rollup"
	"github.com/praveensiddu/rentledger/internal/rules"
)

// Runner wires the stages together over one loaded entity set.
type Runner struct {
	cfg        *config.Config
	ents       *entities.Set
	rules      *rules.Store
	normalizer *normalizer.Service
	classifier *classify.Service
	engine     *rollup.Engine
	log        zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner creates a Runner over an already-loaded entity set.
func NewRunner(cfg *config.Config, ents *entities.Set, log zerolog.Logger) *Runner {
	ruleStore := rules.NewStore(log)
	return &Runner{
		cfg:        cfg,
		ents:       ents,
		rules:      ruleStore,
		normalizer: normalizer.NewService(cfg, log),
		classifier: classify.NewService(cfg, ruleStore, log),
		engine:     rollup.NewEngine(cfg, ents, log),
		log:        log,
	}
}

// Rules exposes the runner's rule store for the rule-editing commands, so
// edits and classification share one store.
func (r *Runner) Rules() *rules.Store { return r.rules }

// accountLock returns the mutex serializing writes for one account.
func (r *Runner) accountLock(account string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks == nil {
		r.locks = map[string]*sync.Mutex{}
	}
	if r.locks[account] == nil {
		r.locks[account] = &sync.Mutex{}
	}
	return r.locks[account]
}

// Run executes the full pipeline: rule hygiene per account, then
// normalize-all, classify-all, and the summary recomputation.
func (r *Runner) Run() error {
	if err := r.cfg.EnsureDirs(); err != nil {
		return err
	}

	for _, name := range r.ents.AccountNames() {
		acct := r.ents.BankAccounts[name]
		if err := r.prepareRules(acct); err != nil {
			return err
		}
	}

	for _, name := range r.ents.AccountNames() {
		acct := r.ents.BankAccounts[name]
		if err := r.refresh(acct); err != nil {
			return err
		}
	}

	return r.engine.Recompute()
}

// RefreshAccount re-runs normalization and classification for one account,
// then recomputes the summaries. Called after a mutating event on that
// account (statement upload, rule edit, addendum entry).
func (r *Runner) RefreshAccount(account string) error {
	acct, ok := r.ents.BankAccounts[account]
	if !ok {
		return fmt.Errorf("pipeline: unknown bank account %q", account)
	}
	if err := r.cfg.EnsureDirs(); err != nil {
		return err
	}
	if err := r.prepareRules(acct); err != nil {
		return err
	}
	if err := r.refresh(acct); err != nil {
		return err
	}
	return r.engine.Recompute()
}

// prepareRules runs Dedup then Validate on the account's rule file. A rule
// set that still has duplicate patterns after dedup is ambiguous and fails
// the run.
func (r *Runner) prepareRules(acct model.BankAccount) error {
	path := acct.RulesPath(r.cfg.Year)
	if _, err := r.rules.Dedup(path); err != nil {
		return err
	}
	return r.rules.Validate(path)
}

func (r *Runner) refresh(acct model.BankAccount) error {
	lock := r.accountLock(acct.Name)
	lock.Lock()
	defer lock.Unlock()

	format, ok := r.ents.FormatFor(acct)
	if !ok {
		r.log.Warn().Str("account", acct.Name).Str("bank", acct.BankName).
			Msg("no statement format for bank, skipping normalization")
	} else if _, err := r.normalizer.NormalizeAccount(acct, format); err != nil {
		return err
	}

	return r.classifier.ClassifyAccount(acct)
}
