// Command painel-import loads processed statement CSV files into the ledger
// and runs the classification rules.
//
//	painel-import [-classify-only] file.csv...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"painel/internal/amqp"
	"painel/internal/backend"
	"painel/internal/cli"
	"painel/internal/config"
	"painel/internal/importer"
	"painel/internal/log"
)

func main() {
	classifyOnly := flag.Bool("classify-only", false, "only re-run the classification rules")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-classify-only] file.csv...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentImport)

	if !*classifyOnly && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *classifyOnly, flag.Args()); err != nil {
		logger.Error("Import failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, classifyOnly bool, files []string) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	source, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer source.Close()
	if source.Writer == nil {
		return fmt.Errorf("backend %q is read-only", cfg.DataBackend)
	}

	rules := cli.LoadRules(logger, cfg)

	var publisher importer.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, the dashboard will pick the import up after its snapshot TTL", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	svc := importer.NewService(source.Writer, rules.Classification, publisher, logger.Slog())

	if classifyOnly {
		n, err := svc.Classify(ctx)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Classification finished", log.FieldRows, n)
		return nil
	}

	res, err := svc.Import(ctx, files)
	if errors.Is(err, importer.ErrNoFiles) {
		return fmt.Errorf("%w: pass at least one CSV file", err)
	}
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Import finished",
		log.FieldBatchID, res.BatchID,
		log.FieldRows, res.Rows,
		"files", len(res.Files),
		"classified", res.Classified,
		log.FieldDuration, res.Duration.Milliseconds())
	return nil
}
