package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
	"purchase-ledger/internal/store"
)

func newTestService(t *testing.T) app.ApplicationService {
	t.Helper()
	seed, err := store.LoadSeedFile("../../store/testdata/seed.yaml")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	purchases := core.NewPurchaseService(
		store.NewMemory(seed),
		core.NewStaticRuleEngine(core.DefaultAccounts()),
		nil,
		core.WithLogger(logger),
		core.WithClock(func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }),
	)
	return app.NewAppService(purchases, nil, logger)
}

func run(t *testing.T, svc app.ApplicationService, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func() (app.ApplicationService, error) { return svc, nil })
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const draftJSON = `{"supplier_id":"SUP-1","original_type_id":"OT-1","quantity_purchased":"100","rate":"2.50",
 "freight":{"agent_id":"FF-1","amount":"50","conversion_rate":"1.2"}}`

func TestFinalizeSaveBalances(t *testing.T) {
	svc := newTestService(t)

	out, err := run(t, svc, draftJSON, "finalize")
	require.NoError(t, err)
	var preview app.PreviewResult
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	require.Equal(t, "OP-0001-150326-ACM", preview.Preview.Purchase.ID)

	purchase, err := json.Marshal(preview.Preview.Purchase)
	require.NoError(t, err)
	out, err = run(t, svc, string(purchase), "save")
	require.NoError(t, err)
	require.Contains(t, out, "JV-OP-0001-150326-ACM")

	out, err = run(t, svc, "", "list")
	require.NoError(t, err)
	require.Contains(t, out, "OP-0001-150326-ACM")

	out, err = run(t, svc, "", "bal")
	require.NoError(t, err)
	require.Contains(t, out, "TRIAL BALANCE")
	require.Contains(t, out, "AP-001")
	require.Contains(t, out, "-310.00")

	out, err = run(t, svc, "", "balances", "--format", "csv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Account,Debit,Credit,Balance\n"))

	out, err = run(t, svc, "", "voucher", "JV-OP-0001-150326-ACM")
	require.NoError(t, err)
	require.Contains(t, out, "310.00")

	out, err = run(t, svc, "", "reverse", "JV-OP-0001-150326-ACM", "--date", "2026-03-16")
	require.NoError(t, err)
	require.Contains(t, out, "RJV-OP-0001-150326-ACM")

	out, err = run(t, svc, "", "payables")
	require.NoError(t, err)
	require.Contains(t, out, "FF-1")
}

func TestFinalize_ValidationError(t *testing.T) {
	_, err := run(t, newTestService(t), `{}`, "finalize")
	require.ErrorIs(t, err, core.ErrMissingRequiredField)
}

func TestSave_RequiresID(t *testing.T) {
	_, err := run(t, newTestService(t), `{"supplier_id":"SUP-1"}`, "save")
	require.ErrorContains(t, err, "run finalize first")
}

func TestBadInput(t *testing.T) {
	svc := newTestService(t)

	_, err := run(t, svc, `not json`, "finalize")
	require.ErrorContains(t, err, "invalid JSON input")

	_, err = run(t, svc, "", "balances", "--format", "xml")
	require.ErrorContains(t, err, "unknown format")

	_, err = run(t, svc, "", "voucher")
	require.Error(t, err)

	_, err = run(t, svc, "", "voucher", "JV-none")
	require.ErrorIs(t, err, core.ErrVoucherNotFound)
}

func TestOptions(t *testing.T) {
	out, err := run(t, newTestService(t), "", "options", "--supplier", "SUP-1")
	require.NoError(t, err)
	var md core.MasterData
	require.NoError(t, json.Unmarshal([]byte(out), &md))
	require.Len(t, md.SubSuppliers, 1)
	require.Empty(t, md.OriginalProducts)
}

func TestRootStartsInteractiveSession(t *testing.T) {
	out, err := run(t, newTestService(t), "/help\n/exit\n")
	require.NoError(t, err)
	require.Contains(t, out, "Purchase Ledger")
	require.Contains(t, out, "Goodbye.")
}
