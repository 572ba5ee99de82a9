package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"painel/internal/core"
	"painel/internal/ledger"
)

// maxParallelFiles bounds how many statement files are parsed at once.
const maxParallelFiles = 4

// ParseCSV reads a processed statement export. The first record is the
// header. Rows without a FILE_PATH get source as their source file.
func ParseCSV(r io.Reader, source string) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}
	h, err := ledger.NewHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	txs := make([]core.Transaction, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if ledger.Blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		t, err := h.Decode(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		if t.SourceFile == "" {
			t.SourceFile = source
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// ReadFile parses one CSV file from disk.
func ReadFile(path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f, path)
}

// ReadFiles parses the files concurrently and returns their rows in the
// order the paths were given. The first failure cancels the rest.
func ReadFiles(ctx context.Context, paths []string) ([]core.Transaction, error) {
	results := make([][]core.Transaction, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			txs, err := ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]core.Transaction, 0)
	for _, txs := range results {
		all = append(all, txs...)
	}
	return all, nil
}
