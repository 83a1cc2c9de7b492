package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Rule types understood by RuleEngine.
const (
	RuleOriginalPurchase = "original_purchase"
	RulePayable          = "payable"
	RuleFreight          = "freight"
	RuleClearing         = "clearing"
	RuleCommission       = "commission"
)

// RuleEngine resolves the account code posted to for a rule type.
type RuleEngine interface {
	ResolveAccount(ctx context.Context, ruleType string) (string, error)
}

type staticRuleEngine struct {
	rules map[string]string
}

// NewStaticRuleEngine serves rules from a fixed mapping, typically built from configuration.
func NewStaticRuleEngine(accounts AccountMap) RuleEngine {
	return &staticRuleEngine{rules: map[string]string{
		RuleOriginalPurchase: accounts.OriginalPurchase,
		RulePayable:          accounts.Payable,
		RuleFreight:          accounts.Freight,
		RuleClearing:         accounts.Clearing,
		RuleCommission:       accounts.Commission,
	}}
}

func (r *staticRuleEngine) ResolveAccount(_ context.Context, ruleType string) (string, error) {
	code, ok := r.rules[ruleType]
	if !ok || code == "" {
		return "", fmt.Errorf("no account rule configured for rule_type %q", ruleType)
	}
	return code, nil
}

type pgRuleEngine struct {
	pool *pgxpool.Pool
}

// NewPostgresRuleEngine constructs a RuleEngine backed by the account_rules table.
func NewPostgresRuleEngine(pool *pgxpool.Pool) RuleEngine {
	return &pgRuleEngine{pool: pool}
}

// ResolveAccount returns the active account code for ruleType, highest priority first.
func (r *pgRuleEngine) ResolveAccount(ctx context.Context, ruleType string) (string, error) {
	var accountCode string
	err := r.pool.QueryRow(ctx, `
		SELECT account_code
		FROM account_rules
		WHERE rule_type = $1
		  AND (effective_to IS NULL OR effective_to >= CURRENT_DATE)
		ORDER BY priority DESC
		LIMIT 1
	`, ruleType).Scan(&accountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("no account rule found for rule_type %q, seed account_rules or run migrations", ruleType)
		}
		return "", fmt.Errorf("resolve account rule %q: %w", ruleType, err)
	}
	return accountCode, nil
}

// ResolveAccounts builds the AccountMap a purchase posts to.
func ResolveAccounts(ctx context.Context, rules RuleEngine) (AccountMap, error) {
	var m AccountMap
	for _, r := range []struct {
		ruleType string
		target   *string
	}{
		{RuleOriginalPurchase, &m.OriginalPurchase},
		{RulePayable, &m.Payable},
		{RuleFreight, &m.Freight},
		{RuleClearing, &m.Clearing},
		{RuleCommission, &m.Commission},
	} {
		code, err := rules.ResolveAccount(ctx, r.ruleType)
		if err != nil {
			return AccountMap{}, err
		}
		*r.target = code
	}
	return m, nil
}
