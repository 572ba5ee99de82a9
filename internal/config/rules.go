package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"painel/internal/core"
)

// Salary rule fields. The classification moved from the sub-account to a
// dedicated category column at some point, so both are supported.
const (
	SalaryFieldSubAccount = "subconta"
	SalaryFieldCategory   = "categoria"
)

var ErrInvalidRules = errors.New("invalid rules")

// Rules holds the business configuration the reports depend on.
type Rules struct {
	Salary         SalaryRule           `toml:"salary"`
	Suppliers      SupplierRule         `toml:"suppliers"`
	Classification []ClassificationRule `toml:"classification"`
}

// SalaryRule selects the lines counted as payroll.
type SalaryRule struct {
	Field string `toml:"field"`
	Value string `toml:"value"`
}

// SupplierRule drives the supplier profitability report.
type SupplierRule struct {
	RevenueAccount string            `toml:"revenue_account"`
	ExpenseAccount string            `toml:"expense_account"`
	AllowList      []string          `toml:"allow_list"`
	Aliases        map[string]string `toml:"aliases"`
}

// ClassificationRule sets Category on lines whose description contains any pattern.
type ClassificationRule struct {
	Category string   `toml:"category"`
	Patterns []string `toml:"patterns"`
}

// DefaultRules mirrors the values the dashboard has been running with.
func DefaultRules() Rules {
	return Rules{
		Salary: SalaryRule{Field: SalaryFieldSubAccount, Value: "Salário"},
		Suppliers: SupplierRule{
			RevenueAccount: "Receita de Serviços",
			ExpenseAccount: "Despesa de Serviços",
			AllowList:      []string{"Panasonic", "Intelbras", "Hikvision", "Positivo"},
			Aliases:        map[string]string{"Hikvision": "Hikvision Brasil"},
		},
		Classification: []ClassificationRule{
			{Category: "Salário dos Funcionários", Patterns: []string{"PRO-LABORE", "SALARIO"}},
		},
	}
}

// LoadRules reads a TOML rules file. Keys missing from the file keep
// their defaults; a key present in the file replaces the default value
// whole (lists and the alias table are not merged). An empty path returns
// the defaults.
func LoadRules(path string) (Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	var file Rules
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return Rules{}, fmt.Errorf("decode rules %s: %w", path, err)
	}
	return overlay(file, md)
}

// ParseRules decodes rules from TOML text on top of the defaults.
func ParseRules(data string) (Rules, error) {
	var file Rules
	md, err := toml.Decode(data, &file)
	if err != nil {
		return Rules{}, fmt.Errorf("decode rules: %w", err)
	}
	return overlay(file, md)
}

// overlay copies the keys defined in the file onto the defaults.
func overlay(file Rules, md toml.MetaData) (Rules, error) {
	rules := DefaultRules()

	if md.IsDefined("salary", "field") {
		rules.Salary.Field = file.Salary.Field
	}
	if md.IsDefined("salary", "value") {
		rules.Salary.Value = file.Salary.Value
	}
	if md.IsDefined("suppliers", "revenue_account") {
		rules.Suppliers.RevenueAccount = file.Suppliers.RevenueAccount
	}
	if md.IsDefined("suppliers", "expense_account") {
		rules.Suppliers.ExpenseAccount = file.Suppliers.ExpenseAccount
	}
	if md.IsDefined("suppliers", "allow_list") {
		rules.Suppliers.AllowList = file.Suppliers.AllowList
	}
	if md.IsDefined("suppliers", "aliases") {
		rules.Suppliers.Aliases = file.Suppliers.Aliases
		if rules.Suppliers.Aliases == nil {
			rules.Suppliers.Aliases = map[string]string{}
		}
	}
	if md.IsDefined("classification") {
		rules.Classification = file.Classification
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	switch r.Salary.Field {
	case SalaryFieldSubAccount, SalaryFieldCategory:
	default:
		return fmt.Errorf("%w: salary field %q must be %q or %q", ErrInvalidRules, r.Salary.Field, SalaryFieldSubAccount, SalaryFieldCategory)
	}
	if strings.TrimSpace(r.Salary.Value) == "" {
		return fmt.Errorf("%w: salary value is empty", ErrInvalidRules)
	}
	if strings.TrimSpace(r.Suppliers.RevenueAccount) == "" || strings.TrimSpace(r.Suppliers.ExpenseAccount) == "" {
		return fmt.Errorf("%w: supplier revenue and expense accounts are required", ErrInvalidRules)
	}
	for i, c := range r.Classification {
		if strings.TrimSpace(c.Category) == "" {
			return fmt.Errorf("%w: classification %d has no category", ErrInvalidRules, i)
		}
		if len(c.Patterns) == 0 {
			return fmt.Errorf("%w: classification %q has no patterns", ErrInvalidRules, c.Category)
		}
	}
	return nil
}

// Matches reports whether t is a payroll line under this rule. The
// comparison is exact, like every other ledger key.
func (s SalaryRule) Matches(t core.Transaction) bool {
	switch s.Field {
	case SalaryFieldCategory:
		return t.Category == s.Value
	default:
		return t.SubAccount == s.Value
	}
}
