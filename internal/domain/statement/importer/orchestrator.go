// Package importer drives the statement import pipeline through its two
// phases: preview (parse, normalize, detect duplicates, suggest categories)
// and commit (persist the user's selection all-or-nothing).
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fmcardoso/splitledger/internal/domain/ledger"
	"github.com/fmcardoso/splitledger/internal/domain/statement/categorize"
	"github.com/fmcardoso/splitledger/internal/domain/statement/dedup"
	"github.com/fmcardoso/splitledger/internal/domain/statement/normalizer"
	"github.com/fmcardoso/splitledger/internal/domain/statement/parser"
	"github.com/fmcardoso/splitledger/pkg/money"
)

// State tracks a session through its lifecycle. Transitions only move
// forward; a failed session must be re-previewed, never retried in place.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StatePreviewReady
	StateCommitting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StatePreviewReady:
		return "preview_ready"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SplitRule decides how a committed expense is divided among participants.
type SplitRule struct {
	Type string // "equal" or "custom"
	// Weights maps participant to a relative share weight, used when Type
	// is "custom". Ignored for "equal".
	Weights map[string]int
}

// Config is the immutable input to one pipeline run.
type Config struct {
	GroupID             string
	DefaultPayer        string
	Participants        []string
	Split               SplitRule
	DefaultCategory     string
	DetectDuplicates    bool
	AvailableCategories []string
	DateFormatHint      string // "auto", "MM/DD/YYYY" or "DD/MM/YYYY"
	DayFirstLocale      bool
	SignConvention      normalizer.SignConvention
	DefaultCurrency     string
	DuplicateWindowDays int
}

// Validate rejects configs that cannot produce a correct import.
func (c Config) Validate() error {
	if c.GroupID == "" {
		return &ValidationError{Field: "group_id", Message: "required"}
	}
	if c.DefaultPayer == "" {
		return &ValidationError{Field: "default_payer", Message: "required"}
	}
	if len(c.Participants) == 0 {
		return &ValidationError{Field: "participants", Message: "at least one required"}
	}
	switch c.Split.Type {
	case "", "equal":
	case "custom":
		if len(c.Split.Weights) == 0 {
			return &ValidationError{Field: "split", Message: "custom split requires weights"}
		}
		for _, p := range c.Participants {
			if w, ok := c.Split.Weights[p]; !ok || w < 0 {
				return &ValidationError{Field: "split", Message: fmt.Sprintf("missing or negative weight for %q", p)}
			}
		}
	default:
		return &ValidationError{Field: "split", Message: fmt.Sprintf("unknown split type %q", c.Split.Type)}
	}
	if len(c.AvailableCategories) > 0 && c.DefaultCategory != "" {
		found := false
		for _, cat := range c.AvailableCategories {
			if cat == c.DefaultCategory {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Field: "default_category", Message: fmt.Sprintf("%q is not an available category", c.DefaultCategory)}
		}
	}
	return nil
}

// SoftError is a non-fatal per-transaction failure surfaced with the
// preview: the transaction carries a conservative verdict or suggestion
// instead of aborting the run.
type SoftError struct {
	Index int
	Stage string // "duplicate_detection" or "category_suggestion"
	Err   error
}

// Session is the preview result. Verdicts and Suggestions are index-aligned
// with Transactions. The caller holds it while editing selection and
// overrides, then spends it on exactly one Commit.
type Session struct {
	State                 State
	Transactions          []normalizer.Transaction
	Verdicts              []dedup.Verdict
	Suggestions           []categorize.Suggestion
	ParseErrors           []parser.ParseError
	SoftErrors            []SoftError
	RequiresImageFallback bool

	config Config
}

// DefaultSelection returns the indices selected by default: everything
// except near-certain duplicates.
func (s *Session) DefaultSelection() []int {
	selected := make([]int, 0, len(s.Transactions))
	for i := range s.Transactions {
		if !s.Verdicts[i].AutoSkip {
			selected = append(selected, i)
		}
	}
	return selected
}

// Summary aggregates a commit attempt.
type Summary struct {
	Total             int
	Imported          int
	DuplicatesSkipped int
	Errors            int
}

// Outcome reports what happened to one selected transaction.
type Outcome struct {
	Index   int
	EntryID uuid.UUID
	Status  string // "imported", "rolled_back", "failed", "not_attempted"
}

// Result is the terminal record of one commit attempt.
type Result struct {
	Success  bool
	Summary  Summary
	Outcomes []Outcome
	Err      error
}

// Orchestrator wires the pipeline stages together. Safe for sequential
// reuse; the caller must serialize commits per ledger group.
type Orchestrator struct {
	parser    *parser.Parser
	detector  *dedup.Detector
	suggester *categorize.Suggester
	store     ledger.Store
	logger    *slog.Logger
	events    chan<- Progress
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEvents subscribes a channel to progress events. Sends never block;
// an unbuffered or full channel drops events.
func WithEvents(ch chan<- Progress) Option {
	return func(o *Orchestrator) { o.events = ch }
}

// New builds an orchestrator over a ledger store. A nil suggester falls
// back to the built-in rule set with no alias lookup.
func New(store ledger.Store, suggester *categorize.Suggester, windowDays int, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		parser:    parser.New(logger),
		detector:  dedup.New(store, windowDays, logger),
		suggester: suggester,
		store:     store,
		logger:    logger,
	}
	if o.suggester == nil {
		o.suggester = categorize.NewSuggester(nil, categorize.NewEngine(categorize.DefaultRules()), logger)
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Preview runs parse, normalize and the two annotators, returning a session
// ready for selection. It fails fast only when the file yields nothing
// usable; row-level problems come back inside the session.
func (o *Orchestrator) Preview(ctx context.Context, file []byte, kind parser.FileKind, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	session := &Session{State: StatePreviewing, config: cfg}
	o.emit(Progress{Step: StepParsing, Percent: 0})

	parsed, err := o.parser.Parse(file, kind)
	if err != nil {
		session.State = StateFailed
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}
	if parsed.RequiresImageFallback {
		// Scanned PDF: the caller routes to image extraction elsewhere.
		session.State = StateFailed
		session.RequiresImageFallback = true
		return session, fmt.Errorf("statement has no extractable text layer")
	}
	session.ParseErrors = append(session.ParseErrors, parsed.Errors...)

	ncfg := normalizerConfig(cfg, parsed.Dialect)
	for _, rec := range parsed.Records {
		tx, perr := normalizer.Normalize(rec, ncfg)
		if perr != nil {
			session.ParseErrors = append(session.ParseErrors, *perr)
			continue
		}
		session.Transactions = append(session.Transactions, tx)
	}

	if len(session.Transactions) == 0 {
		session.State = StateFailed
		if len(session.ParseErrors) > 0 {
			return session, fmt.Errorf("no usable transactions: %d rows failed to parse", len(session.ParseErrors))
		}
		return session, fmt.Errorf("statement contains no transactions")
	}

	o.emit(Progress{Step: StepCheckingDuplicates, Percent: 25})
	o.annotate(ctx, session)
	o.emit(Progress{Step: StepProcessing, Percent: 75})

	session.State = StatePreviewReady
	o.logger.Info("preview ready",
		slog.String("group_id", cfg.GroupID),
		slog.Int("transactions", len(session.Transactions)),
		slog.Int("parse_errors", len(session.ParseErrors)))
	return session, nil
}

// annotate runs duplicate detection and category suggestion concurrently.
// Neither depends on the other; both arrays stay index-aligned with the
// transaction list.
func (o *Orchestrator) annotate(ctx context.Context, session *Session) {
	txs := session.Transactions
	session.Verdicts = make([]dedup.Verdict, len(txs))
	session.Suggestions = make([]categorize.Suggestion, len(txs))

	var (
		wg       sync.WaitGroup
		dupeSoft []dedup.SoftError
		sugSoft  []SoftError
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if !session.config.DetectDuplicates {
			return
		}
		verdicts, soft := o.detector.Detect(ctx, session.config.GroupID, txs, session.config.DuplicateWindowDays)
		copy(session.Verdicts, verdicts)
		dupeSoft = soft
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ccfg := categorize.Config{
			DefaultCategory:     session.config.DefaultCategory,
			AvailableCategories: session.config.AvailableCategories,
		}
		for i, tx := range txs {
			sug, err := o.suggester.Suggest(ctx, tx.Description, ccfg)
			session.Suggestions[i] = sug
			if err != nil {
				sugSoft = append(sugSoft, SoftError{Index: i, Stage: "category_suggestion", Err: err})
			}
		}
	}()

	wg.Wait()

	for _, se := range dupeSoft {
		session.SoftErrors = append(session.SoftErrors, SoftError{Index: se.Index, Stage: "duplicate_detection", Err: se.Err})
	}
	session.SoftErrors = append(session.SoftErrors, sugSoft...)
}

// Commit persists the selected transactions in order, all-or-nothing. On a
// write failure every entry already written in this commit is deleted in
// reverse order so the ledger looks untouched.
func (o *Orchestrator) Commit(ctx context.Context, session *Session, selected []int, categoryOverrides map[int]string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if session == nil || session.State != StatePreviewReady {
		return nil, &ValidationError{Field: "session", Message: "commit requires a preview-ready session"}
	}
	for _, idx := range selected {
		if idx < 0 || idx >= len(session.Transactions) {
			return nil, &ValidationError{Field: "selection", Message: fmt.Sprintf("index %d out of range", idx)}
		}
	}

	session.State = StateCommitting
	ordered := append([]int(nil), selected...)
	sort.Ints(ordered)

	result := &Result{
		Summary: Summary{
			Total:             len(session.Transactions),
			DuplicatesSkipped: countSkippedDuplicates(session, ordered),
			Errors:            len(session.ParseErrors),
		},
	}

	total := len(ordered)
	written := make([]uuid.UUID, 0, total)

	for n, idx := range ordered {
		o.emit(Progress{Step: StepImporting, Percent: percent(n, total), Current: n + 1, Total: total})

		entry, err := o.buildEntry(session, idx, categoryOverrides, cfg)
		if err == nil {
			var id uuid.UUID
			id, err = o.store.Insert(ctx, entry)
			if err == nil {
				written = append(written, id)
				result.Outcomes = append(result.Outcomes, Outcome{Index: idx, EntryID: id, Status: "imported"})
				continue
			}
		}

		// Write failed: stop, compensate in reverse write order.
		perr := &PersistenceError{Index: idx, Err: err}
		o.logger.Error("commit write failed, rolling back",
			slog.Int("index", idx), slog.Int("written", len(written)), slog.Any("error", err))

		result.Outcomes = append(result.Outcomes, Outcome{Index: idx, Status: "failed"})
		for _, rest := range ordered[n+1:] {
			result.Outcomes = append(result.Outcomes, Outcome{Index: rest, Status: "not_attempted"})
		}

		if rerr := o.rollback(ctx, written, result); rerr != nil {
			session.State = StateFailed
			result.Err = rerr
			return result, rerr
		}

		session.State = StateFailed
		result.Err = perr
		return result, perr
	}

	result.Success = true
	result.Summary.Imported = total
	session.State = StateCommitted
	o.emit(Progress{Step: StepImporting, Percent: 100, Current: total, Total: total})
	o.logger.Info("commit complete",
		slog.String("group_id", cfg.GroupID), slog.Int("imported", total))
	return result, nil
}

// rollback deletes the written entries newest-first. A delete failure stops
// compensation and escalates to a ReconciliationError listing what is left.
func (o *Orchestrator) rollback(ctx context.Context, written []uuid.UUID, result *Result) error {
	for i := len(written) - 1; i >= 0; i-- {
		if err := o.store.Delete(ctx, written[i]); err != nil {
			remaining := append([]uuid.UUID(nil), written[:i+1]...)
			o.logger.Error("rollback failed, manual reconciliation required",
				slog.Int("remaining", len(remaining)), slog.Any("error", err))
			return &ReconciliationError{Remaining: remaining, Err: err}
		}
	}
	for i := range result.Outcomes {
		if result.Outcomes[i].Status == "imported" {
			result.Outcomes[i].Status = "rolled_back"
		}
	}
	return nil
}

// buildEntry resolves one selected transaction into a ledger entry with the
// final category and split shares.
func (o *Orchestrator) buildEntry(session *Session, idx int, overrides map[int]string, cfg Config) (ledger.Entry, error) {
	tx := session.Transactions[idx]

	category := cfg.DefaultCategory
	if sug := session.Suggestions[idx]; !sug.BelowThreshold {
		category = sug.Category
	}
	if override, ok := overrides[idx]; ok && override != "" {
		category = override
	}

	shares, err := splitShares(tx.AmountCents, tx.Currency, cfg)
	if err != nil {
		return ledger.Entry{}, err
	}

	return ledger.Entry{
		GroupID:     cfg.GroupID,
		Date:        tx.Date,
		Description: tx.Description,
		AmountCents: tx.AmountCents,
		Currency:    tx.Currency,
		Category:    category,
		Payer:       cfg.DefaultPayer,
		Shares:      shares,
	}, nil
}

// splitShares divides the amount among participants without losing cents.
func splitShares(amountCents int64, currency string, cfg Config) (map[string]int64, error) {
	total := money.New(amountCents, currency)

	var parts []*money.Money
	var err error
	if cfg.Split.Type == "custom" {
		weights := make([]int, len(cfg.Participants))
		for i, p := range cfg.Participants {
			weights[i] = cfg.Split.Weights[p]
		}
		parts, err = total.Allocate(weights)
	} else {
		parts, err = total.Split(len(cfg.Participants))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to split %s among %d participants: %w", total.Display(), len(cfg.Participants), err)
	}

	shares := make(map[string]int64, len(parts))
	for i, p := range cfg.Participants {
		shares[p] = parts[i].Amount()
	}
	return shares, nil
}

// countSkippedDuplicates counts auto-skip transactions the user left
// unselected.
func countSkippedDuplicates(session *Session, selected []int) int {
	chosen := make(map[int]struct{}, len(selected))
	for _, idx := range selected {
		chosen[idx] = struct{}{}
	}
	skipped := 0
	for i, v := range session.Verdicts {
		if _, ok := chosen[i]; v.AutoSkip && !ok {
			skipped++
		}
	}
	return skipped
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// normalizerConfig merges the caller's config with what the parser sniffed
// from the file itself. Explicit settings win; sniffed dialect fills gaps.
func normalizerConfig(cfg Config, d parser.Dialect) normalizer.Config {
	ncfg := normalizer.Config{
		DateFormatHint:  cfg.DateFormatHint,
		DayFirstLocale:  cfg.DayFirstLocale,
		SignConvention:  cfg.SignConvention,
		DefaultCurrency: cfg.DefaultCurrency,
	}
	if ncfg.DateFormatHint == "" {
		ncfg.DateFormatHint = normalizer.DateHintAuto
	}
	if d.DayFirstKnown {
		ncfg.DayFirstLocale = d.DayFirst
	}
	if d.EuropeanKnown {
		ncfg.European = d.European
	}
	if ncfg.DefaultCurrency == "" {
		if d.CurrencyHint != "" {
			ncfg.DefaultCurrency = d.CurrencyHint
		} else {
			ncfg.DefaultCurrency = "EUR"
		}
	}
	return ncfg
}
