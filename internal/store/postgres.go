package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"purchase-ledger/internal/core"
)

// appendLockKey serializes purchase appends across processes.
const appendLockKey = 5310427

// Agent kinds stored in agents.kind.
const (
	kindFreightForwarder = "freight_forwarder"
	kindClearingAgent    = "clearing_agent"
	kindCommissionAgent  = "commission_agent"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a core.Store backed by PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap, err := loadSnapshot(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return snap, nil
}

func (s *Postgres) Append(ctx context.Context, c core.Commit) error {
	if err := core.ValidateVoucher(c.Entries); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", appendLockKey); err != nil {
		return fmt.Errorf("failed to acquire append lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM original_purchases WHERE id = $1)", c.Purchase.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check purchase id: %w", err)
	}
	if exists {
		return core.ErrDuplicatePurchase
	}

	originals, err := loadContainerRefs(ctx, tx)
	if err != nil {
		return err
	}
	finished, err := loadFinishedGoods(ctx, tx)
	if err != nil {
		return err
	}
	if core.IsDuplicateContainer(c.Purchase.ContainerNumber, originals, finished) {
		return &core.DuplicateContainerError{Value: c.Purchase.ContainerNumber}
	}

	if err := insertPurchase(ctx, tx, c.Purchase); err != nil {
		return err
	}
	if err := insertEntries(ctx, tx, c.Entries); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO purchase_sequence (id, next_number) VALUES (1, 2)
		ON CONFLICT (id) DO UPDATE SET next_number = purchase_sequence.next_number + 1
	`); err != nil {
		return fmt.Errorf("failed to advance purchase sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) AppendJournal(ctx context.Context, entries []core.JournalEntry) error {
	if err := core.ValidateVoucher(entries); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Postgres) JournalEntries(ctx context.Context) ([]core.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, voucher_id, entry_date::text, entry_type, account_code, debit, credit,
		       description, COALESCE(entity_id, ''), COALESCE(entity_type, '')
		FROM journal_entries
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query journal entries: %w", err)
	}
	defer rows.Close()

	var out []core.JournalEntry
	for rows.Next() {
		var e core.JournalEntry
		var entryType, entityType string
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.Date, &entryType, &e.Account, &e.Debit, &e.Credit,
			&e.Description, &e.EntityID, &entityType); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.EntryType = core.EntryType(entryType)
		e.EntityType = core.EntityType(entityType)
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertEntries(ctx context.Context, tx pgx.Tx, entries []core.JournalEntry) error {
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO journal_entries (id, voucher_id, entry_date, entry_type, account_code, debit, credit, description, entity_id, entity_type)
			VALUES ($1, $2, $3::date, $4, $5, $6::numeric, $7::numeric, $8, NULLIF($9, ''), NULLIF($10, ''))
		`, e.ID, e.VoucherID, e.Date, string(e.EntryType), e.Account,
			e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Description, e.EntityID, string(e.EntityType))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: %s", core.ErrDuplicateEntry, e.ID)
			}
			return fmt.Errorf("failed to insert journal entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func insertPurchase(ctx context.Context, tx pgx.Tx, p core.OriginalPurchase) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO original_purchases (
			id, purchase_date, supplier_id, sub_supplier_id, original_type_id, original_product_id,
			quantity_purchased, rate, currency, conversion_rate, batch_number, container_number,
			division_id, sub_division_id, discount_surcharge,
			freight_agent_id, freight_amount, freight_currency, freight_conversion_rate,
			clearing_agent_id, clearing_amount, clearing_currency, clearing_conversion_rate,
			commission_agent_id, commission_amount, commission_currency, commission_conversion_rate
		) VALUES (
			$1, $2::date, $3, NULLIF($4, ''), $5, NULLIF($6, ''),
			$7::numeric, $8::numeric, $9, $10::numeric, $11, NULLIF($12, ''),
			NULLIF($13, ''), NULLIF($14, ''), $15::numeric,
			NULLIF($16, ''), $17::numeric, $18, $19::numeric,
			NULLIF($20, ''), $21::numeric, $22, $23::numeric,
			NULLIF($24, ''), $25::numeric, $26, $27::numeric
		)`,
		p.ID, p.Date, p.SupplierID, p.SubSupplierID, p.OriginalTypeID, p.OriginalProductID,
		p.QuantityPurchased.String(), p.Rate.String(), p.Currency, p.ConversionRate.String(), p.BatchNumber, p.ContainerNumber,
		p.DivisionID, p.SubDivisionID, optionalNumeric(p.DiscountSurcharge),
		p.Freight.AgentID, optionalNumeric(p.Freight.Amount), p.Freight.Currency, p.Freight.ConversionRate.String(),
		p.Clearing.AgentID, optionalNumeric(p.Clearing.Amount), p.Clearing.Currency, p.Clearing.ConversionRate.String(),
		p.Commission.AgentID, optionalNumeric(p.Commission.Amount), p.Commission.Currency, p.Commission.ConversionRate.String(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return core.ErrDuplicatePurchase
		}
		return fmt.Errorf("failed to insert purchase %s: %w", p.ID, err)
	}
	return nil
}

func optionalNumeric(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func loadSnapshot(ctx context.Context, q querier) (*core.Snapshot, error) {
	var (
		snap core.Snapshot
		err  error
	)
	m := &snap.MasterData
	if m.Suppliers, err = collect[core.Supplier](ctx, q,
		"SELECT id, name, COALESCE(default_currency, '') FROM suppliers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	if m.SubSuppliers, err = collect[core.SubSupplier](ctx, q,
		"SELECT id, supplier_id, name FROM sub_suppliers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load sub suppliers: %w", err)
	}
	for kind, target := range map[string]*[]core.Agent{
		kindFreightForwarder: &m.FreightForwarders,
		kindClearingAgent:    &m.ClearingAgents,
		kindCommissionAgent:  &m.CommissionAgents,
	} {
		if *target, err = collect[core.Agent](ctx, q,
			"SELECT id, name FROM agents WHERE kind = $1 ORDER BY id", kind); err != nil {
			return nil, fmt.Errorf("load %s agents: %w", kind, err)
		}
	}
	if m.Divisions, err = collect[core.Division](ctx, q,
		"SELECT id, name FROM divisions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load divisions: %w", err)
	}
	if m.SubDivisions, err = collect[core.SubDivision](ctx, q,
		"SELECT id, division_id, name FROM sub_divisions ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load sub divisions: %w", err)
	}
	if m.OriginalTypes, err = collect[core.OriginalType](ctx, q,
		"SELECT id, name FROM original_types ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load original types: %w", err)
	}
	if m.OriginalProducts, err = collect[core.OriginalProduct](ctx, q,
		"SELECT id, original_type_id, name FROM original_products ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load original products: %w", err)
	}

	if snap.OriginalPurchases, err = loadPurchases(ctx, q); err != nil {
		return nil, err
	}
	if snap.FinishedGoodsPurchases, err = loadFinishedGoods(ctx, q); err != nil {
		return nil, err
	}

	err = q.QueryRow(ctx, "SELECT COALESCE((SELECT next_number FROM purchase_sequence WHERE id = 1), 1)").
		Scan(&snap.NextOriginalPurchaseNumber)
	if err != nil {
		return nil, fmt.Errorf("load purchase sequence: %w", err)
	}
	return &snap, nil
}

func collect[T any](ctx context.Context, q querier, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[T])
}

func loadFinishedGoods(ctx context.Context, q querier) ([]core.FinishedGoodsPurchase, error) {
	out, err := collect[core.FinishedGoodsPurchase](ctx, q, `
		SELECT id, purchase_date::text, supplier_id, batch_number, COALESCE(container_number, '')
		FROM finished_goods_purchases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load finished goods purchases: %w", err)
	}
	return out, nil
}

// loadContainerRefs returns only the fields of saved purchases that the
// container check needs.
func loadContainerRefs(ctx context.Context, q querier) ([]core.OriginalPurchase, error) {
	rows, err := q.Query(ctx, "SELECT id, container_number FROM original_purchases WHERE container_number IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("load container numbers: %w", err)
	}
	defer rows.Close()

	var out []core.OriginalPurchase
	for rows.Next() {
		var p core.OriginalPurchase
		if err := rows.Scan(&p.ID, &p.ContainerNumber); err != nil {
			return nil, fmt.Errorf("scan container number: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadPurchases(ctx context.Context, q querier) ([]core.OriginalPurchase, error) {
	rows, err := q.Query(ctx, `
		SELECT id, purchase_date::text, supplier_id, COALESCE(sub_supplier_id, ''), original_type_id,
		       COALESCE(original_product_id, ''), quantity_purchased, rate, currency, conversion_rate,
		       batch_number, COALESCE(container_number, ''), COALESCE(division_id, ''),
		       COALESCE(sub_division_id, ''), discount_surcharge,
		       COALESCE(freight_agent_id, ''), freight_amount, freight_currency, freight_conversion_rate,
		       COALESCE(clearing_agent_id, ''), clearing_amount, clearing_currency, clearing_conversion_rate,
		       COALESCE(commission_agent_id, ''), commission_amount, commission_currency, commission_conversion_rate
		FROM original_purchases
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load original purchases: %w", err)
	}
	defer rows.Close()

	var out []core.OriginalPurchase
	for rows.Next() {
		var (
			p                                 core.OriginalPurchase
			discount, freight, clearing, comm decimal.NullDecimal
		)
		p.Freight.Category = core.CostFreight
		p.Clearing.Category = core.CostClearing
		p.Commission.Category = core.CostCommission
		err := rows.Scan(
			&p.ID, &p.Date, &p.SupplierID, &p.SubSupplierID, &p.OriginalTypeID,
			&p.OriginalProductID, &p.QuantityPurchased, &p.Rate, &p.Currency, &p.ConversionRate,
			&p.BatchNumber, &p.ContainerNumber, &p.DivisionID,
			&p.SubDivisionID, &discount,
			&p.Freight.AgentID, &freight, &p.Freight.Currency, &p.Freight.ConversionRate,
			&p.Clearing.AgentID, &clearing, &p.Clearing.Currency, &p.Clearing.ConversionRate,
			&p.Commission.AgentID, &comm, &p.Commission.Currency, &p.Commission.ConversionRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan original purchase: %w", err)
		}
		p.DiscountSurcharge = nullable(discount)
		p.Freight.Amount = nullable(freight)
		p.Clearing.Amount = nullable(clearing)
		p.Commission.Amount = nullable(comm)
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// SeedMasterData upserts the seed's master data and finished goods purchases.
func SeedMasterData(ctx context.Context, pool *pgxpool.Pool, seed Seed) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, v := range seed.Suppliers {
		batch.Queue(`INSERT INTO suppliers (id, name, default_currency) VALUES ($1, $2, NULLIF($3, ''))
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, default_currency = EXCLUDED.default_currency`,
			v.ID, v.Name, v.DefaultCurrency)
	}
	for _, v := range seed.SubSuppliers {
		batch.Queue(`INSERT INTO sub_suppliers (id, supplier_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET supplier_id = EXCLUDED.supplier_id, name = EXCLUDED.name`,
			v.ID, v.SupplierID, v.Name)
	}
	for kind, agents := range map[string][]core.Agent{
		kindFreightForwarder: seed.FreightForwarders,
		kindClearingAgent:    seed.ClearingAgents,
		kindCommissionAgent:  seed.CommissionAgents,
	} {
		for _, v := range agents {
			batch.Queue(`INSERT INTO agents (kind, id, name) VALUES ($1, $2, $3)
				ON CONFLICT (kind, id) DO UPDATE SET name = EXCLUDED.name`,
				kind, v.ID, v.Name)
		}
	}
	for _, v := range seed.Divisions {
		batch.Queue(`INSERT INTO divisions (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, v.ID, v.Name)
	}
	for _, v := range seed.SubDivisions {
		batch.Queue(`INSERT INTO sub_divisions (id, division_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET division_id = EXCLUDED.division_id, name = EXCLUDED.name`,
			v.ID, v.DivisionID, v.Name)
	}
	for _, v := range seed.OriginalTypes {
		batch.Queue(`INSERT INTO original_types (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`, v.ID, v.Name)
	}
	for _, v := range seed.OriginalProducts {
		batch.Queue(`INSERT INTO original_products (id, original_type_id, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET original_type_id = EXCLUDED.original_type_id, name = EXCLUDED.name`,
			v.ID, v.OriginalTypeID, v.Name)
	}
	for _, v := range seed.FinishedGoodsPurchases {
		batch.Queue(`INSERT INTO finished_goods_purchases (id, purchase_date, supplier_id, batch_number, container_number)
			VALUES ($1, $2::date, $3, $4, NULLIF($5, ''))
			ON CONFLICT (id) DO UPDATE SET purchase_date = EXCLUDED.purchase_date, supplier_id = EXCLUDED.supplier_id,
				batch_number = EXCLUDED.batch_number, container_number = EXCLUDED.container_number`,
			v.ID, v.Date, v.SupplierID, v.BatchNumber, v.ContainerNumber)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed master data: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
