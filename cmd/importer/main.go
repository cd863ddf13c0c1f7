// Command importer previews and commits bank statement imports into a
// shared expense ledger from the terminal.
//
// Usage:
//
//	importer -file statement.csv -group trip-2026 -payer filipa -participants filipa,joao
//	importer -file statement.pdf -kind pdf -group trip-2026 -payer filipa -participants filipa,joao -commit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fmcardoso/splitledger/internal/domain/alias"
	"github.com/fmcardoso/splitledger/internal/domain/ledger"
	"github.com/fmcardoso/splitledger/internal/domain/statement/categorize"
	"github.com/fmcardoso/splitledger/internal/domain/statement/importer"
	"github.com/fmcardoso/splitledger/internal/domain/statement/parser"
	"github.com/fmcardoso/splitledger/pkg/config"
)

func main() {
	var (
		filePath     = flag.String("file", "", "statement file to import (required)")
		kindFlag     = flag.String("kind", "", "file kind: csv, xlsx or pdf (default: by extension)")
		groupID      = flag.String("group", "", "ledger group id (required)")
		payer        = flag.String("payer", "", "who paid (required)")
		participants = flag.String("participants", "", "comma-separated participants (required)")
		category     = flag.String("default-category", "uncategorized", "category for unmatched transactions")
		doCommit     = flag.Bool("commit", false, "commit the default selection instead of previewing only")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *filePath == "" || *groupID == "" || *payer == "" || *participants == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*filePath, *kindFlag, *groupID, *payer, *participants, *category, *doCommit, logger); err != nil {
		logger.Error("import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(filePath, kindFlag, groupID, payer, participants, defaultCategory string, doCommit bool, logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	kind, err := fileKind(filePath, kindFlag)
	if err != nil {
		return err
	}

	store := ledger.NewPostgresStore(pool)
	aliases := alias.NewPostgresStore(pool)
	suggester := categorize.NewSuggester(aliases, categorize.NewEngine(categorize.DefaultRules()), logger)

	events := make(chan importer.Progress, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range events {
			if p.Total > 0 {
				fmt.Fprintf(os.Stderr, "%s %d/%d (%d%%)\n", p.Step, p.Current, p.Total, p.Percent)
			} else {
				fmt.Fprintf(os.Stderr, "%s\n", p.Step)
			}
		}
	}()

	orch := importer.New(store, suggester, cfg.Imports.DuplicateWindow, logger, importer.WithEvents(events))

	importCfg := importer.Config{
		GroupID:          groupID,
		DefaultPayer:     payer,
		Participants:     strings.Split(participants, ","),
		DefaultCategory:  defaultCategory,
		DetectDuplicates: cfg.Imports.DetectDuplicates,
		DayFirstLocale:   cfg.Imports.DayFirstLocale,
		DefaultCurrency:  cfg.Imports.DefaultCurrency,
	}

	session, err := orch.Preview(ctx, data, kind, importCfg)
	if err != nil {
		close(events)
		<-done
		if session != nil && session.RequiresImageFallback {
			return fmt.Errorf("scanned PDF, text extraction not possible: %w", err)
		}
		return err
	}

	printPreview(session)

	if !doCommit {
		close(events)
		<-done
		return nil
	}

	result, err := orch.Commit(ctx, session, session.DefaultSelection(), nil, importCfg)
	close(events)
	<-done
	if err != nil {
		return err
	}

	fmt.Printf("imported %d of %d transactions (%d duplicates skipped, %d row errors)\n",
		result.Summary.Imported, result.Summary.Total,
		result.Summary.DuplicatesSkipped, result.Summary.Errors)
	return nil
}

func printPreview(session *importer.Session) {
	selected := make(map[int]struct{})
	for _, idx := range session.DefaultSelection() {
		selected[idx] = struct{}{}
	}

	for i, tx := range session.Transactions {
		mark := "[x]"
		if _, ok := selected[i]; !ok {
			mark = "[ ]"
		}
		flag := ""
		if session.Verdicts[i].AutoSkip {
			flag = " DUPLICATE"
		} else if session.Verdicts[i].NeedsReview {
			flag = " review?"
		}
		sug := session.Suggestions[i]
		fmt.Printf("%s %s  %-40s %8.2f %s  %s (%.0f%%)%s\n",
			mark, tx.Date.Format("2006-01-02"), tx.Description,
			float64(tx.AmountCents)/100, tx.Currency,
			sug.Category, sug.Confidence*100, flag)
	}
	for _, pe := range session.ParseErrors {
		fmt.Printf("row error: %s\n", pe.Error())
	}
}

func fileKind(path, explicit string) (parser.FileKind, error) {
	hint := explicit
	if hint == "" {
		hint = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch strings.ToLower(hint) {
	case "csv", "tsv", "txt":
		return parser.KindCSV, nil
	case "xlsx", "xls":
		return parser.KindXLSX, nil
	case "pdf":
		return parser.KindPDF, nil
	default:
		return "", fmt.Errorf("unsupported file kind %q", hint)
	}
}
