package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

func sample(desc string) core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2024, 1, 10),
		Description: desc,
		Debit:       decimal.NewFromInt(10),
		Bank:        "Itaú",
	}
}

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := New(sample("A"))

	n, err := s.InsertTransactions(ctx, []core.Transaction{sample("B"), sample("C")})
	if err != nil || n != 2 {
		t.Fatalf("unexpected insert: n=%d err=%v", n, err)
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil || len(txs) != 3 {
		t.Fatalf("unexpected list: %v err=%v", txs, err)
	}
	if txs[2].ID != 3 || txs[2].Category != "Outros" {
		t.Fatalf("unexpected stored row: %+v", txs[2])
	}

	// The returned slice is a copy.
	txs[0].Description = "changed"
	again, _ := s.ListTransactions(ctx)
	if again[0].Description != "A" {
		t.Fatalf("store was mutated through the listed slice")
	}
}

func TestMemoryStoreInsertIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	bad := sample("x")
	bad.Bank = ""

	if _, err := s.InsertTransactions(ctx, []core.Transaction{sample("ok"), bad}); err == nil {
		t.Fatalf("expected error for row without bank")
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected nothing stored, got %d", n)
	}
}

func TestMemoryStoreClassify(t *testing.T) {
	ctx := context.Background()
	s := New(sample("PAGTO salario JAN"), sample("pro-labore"), sample("PIX"))

	n, err := s.Classify(ctx, "Salário dos Funcionários", []string{"PRO-LABORE", "SALARIO"})
	if err != nil || n != 2 {
		t.Fatalf("unexpected classify: n=%d err=%v", n, err)
	}
	txs, _ := s.ListTransactions(ctx)
	if txs[2].Category != "Outros" || txs[0].Category != "Salário dos Funcionários" {
		t.Fatalf("unexpected categories: %q %q", txs[0].Category, txs[2].Category)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.csv"))
	if err != nil {
		t.Fatalf("missing seed should not fail: %v", err)
	}
	if n, _ := s.Count(context.Background()); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}

	path := filepath.Join(dir, "seed.csv")
	content := "DATA,DESCRICAO,DOCUMENTO,CREDITO,DEBITO,SALDO,BANCO,CONTA,SUBCONTA,FILE_PATH\n" +
		"2024-01-02,PIX RECEBIDO,,100,,\"1.100,00\",Itaú,Receita de Serviços,Panasonic,\n" +
		"2024-01-03,TARIFA,,,12.5,\"1.087,50\",Itaú,Despesas,Tarifas,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}
	txs, _ := s.ListTransactions(context.Background())
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[0].SourceFile != path || !txs[1].Balance.Valid {
		t.Fatalf("unexpected seeded rows: %+v", txs)
	}
}
