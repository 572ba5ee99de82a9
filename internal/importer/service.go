package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"painel/internal/amqp"
	"painel/internal/config"
	"painel/internal/ledger"
)

var ErrNoFiles = errors.New("no files to import")

// Publisher announces finished imports. *amqp.Client implements it.
type Publisher interface {
	PublishImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error
}

// Result summarises one import run.
type Result struct {
	BatchID    string
	Files      []string
	Rows       int
	Classified int64
	Duration   time.Duration
}

// Service loads statement files into the ledger, classifies them and
// tells listeners about it.
type Service struct {
	writer    ledger.TransactionWriter
	rules     []config.ClassificationRule
	publisher Publisher // optional
	logger    *slog.Logger
}

func NewService(writer ledger.TransactionWriter, rules []config.ClassificationRule, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		writer:    writer,
		rules:     rules,
		publisher: publisher,
		logger:    logger,
	}
}

// Import parses every file, appends all rows in one write and then runs the
// classification rules over the whole table. A failed publish is logged; the
// import itself already succeeded.
func (s *Service) Import(ctx context.Context, paths []string) (Result, error) {
	if len(paths) == 0 {
		return Result{}, ErrNoFiles
	}
	start := time.Now()
	res := Result{BatchID: uuid.NewString(), Files: paths}
	logger := s.logger.With("batch_id", res.BatchID)

	txs, err := ReadFiles(ctx, paths)
	if err != nil {
		return res, fmt.Errorf("read files: %w", err)
	}
	logger.InfoContext(ctx, "Parsed statement files", "files", len(paths), "rows", len(txs))

	res.Rows, err = s.writer.InsertTransactions(ctx, txs)
	if err != nil {
		return res, fmt.Errorf("insert transactions: %w", err)
	}

	res.Classified, err = s.Classify(ctx)
	if err != nil {
		return res, err
	}
	res.Duration = time.Since(start)

	if s.publisher != nil {
		msg := amqp.NewImportCompletedMessage(res.BatchID, res.Rows, res.Files, res.Classified)
		if err := s.publisher.PublishImportCompleted(ctx, msg); err != nil {
			logger.WarnContext(ctx, "Failed to publish import completed message", "error", err)
		}
	}

	logger.InfoContext(ctx, "Import completed",
		"rows", res.Rows,
		"classified", res.Classified,
		"duration", res.Duration)
	return res, nil
}

// Classify applies every classification rule and returns the number of rows
// updated. It can be run on its own after the rules file changes.
func (s *Service) Classify(ctx context.Context) (int64, error) {
	var total int64
	for _, rule := range s.rules {
		n, err := s.writer.Classify(ctx, rule.Category, rule.Patterns)
		if err != nil {
			return total, fmt.Errorf("classify %q: %w", rule.Category, err)
		}
		s.logger.DebugContext(ctx, "Classification rule applied", "category", rule.Category, "rows", n)
		total += n
	}
	return total, nil
}
