package repl

import (
	"fmt"
	"io"
	"strings"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
)

func printBalances(w io.Writer, result *app.TrialBalanceResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-58s\n", "TRIAL BALANCE")
	fmt.Fprintf(w, "  Currency : %s\n", result.Currency)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-12s %14s %14s %15s\n", "ACCOUNT", "DEBIT", "CREDIT", "BALANCE")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, b := range result.Accounts {
		fmt.Fprintf(w, "  %-12s %14s %14s %15s\n", b.Code,
			b.Debit.StringFixed(2), b.Credit.StringFixed(2), b.Balance.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printPayables(w io.Writer, result *app.PayablesResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  PAYABLES (%s)\n", result.Currency)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	if len(result.Balances) == 0 {
		fmt.Fprintln(w, "  No payables.")
		return
	}
	for _, b := range result.Balances {
		fmt.Fprintf(w, "  %-18s %-12s %14s\n", b.EntityType, b.EntityID, b.Balance.StringFixed(2))
	}
}

func printPurchases(w io.Writer, purchases []core.OriginalPurchase) {
	if len(purchases) == 0 {
		fmt.Fprintln(w, "No original purchases saved yet.")
		return
	}
	fmt.Fprintf(w, "  %-22s %-10s %-10s %-8s %10s %-12s\n", "ID", "DATE", "SUPPLIER", "BATCH", "QTY", "CONTAINER")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 78))
	for _, p := range purchases {
		fmt.Fprintf(w, "  %-22s %-10s %-10s %-8s %10s %-12s\n",
			p.ID, p.Date, p.SupplierID, p.BatchNumber, p.QuantityPurchased.String(), p.ContainerNumber)
	}
}

func printVoucher(w io.Writer, v *app.VoucherResult) {
	fmt.Fprintf(w, "\nVOUCHER %s\n", v.VoucherID)
	printEntries(w, v.Entries)
	fmt.Fprintf(w, "  %-21s %12s %12s\n", "TOTAL", v.TotalDebit.StringFixed(2), v.TotalCredit.StringFixed(2))
}

func printEntries(w io.Writer, entries []core.JournalEntry) {
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-10s %-10s %12s %12s  %s\n", e.Date, e.Account,
			e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Description)
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))
}

func printPreview(w io.Writer, p *core.Preview) {
	pu := p.Purchase
	fmt.Fprintln(w)
	fmt.Fprintf(w, "PURCHASE:   %s\n", pu.ID)
	fmt.Fprintf(w, "DATE:       %s\n", pu.Date)
	fmt.Fprintf(w, "SUPPLIER:   %s\n", pu.SupplierID)
	fmt.Fprintf(w, "BATCH:      %s\n", pu.BatchNumber)
	fmt.Fprintf(w, "QUANTITY:   %s @ %s %s (x %s)\n", pu.QuantityPurchased, pu.Rate, pu.Currency, pu.ConversionRate)
	fmt.Fprintf(w, "ITEM VALUE: %s USD\n", p.Valuation.ItemValue.StringFixed(2))
	fmt.Fprintf(w, "COSTS:      %s USD\n", p.Valuation.AdditionalCosts.StringFixed(2))
	fmt.Fprintf(w, "TOTAL:      %s USD\n", p.Valuation.GrandTotal.StringFixed(2))
	fmt.Fprintln(w, "ENTRIES:")
	printEntries(w, p.Entries)
	for _, warn := range p.Warnings {
		fmt.Fprintln(w, "WARNING:", warn)
	}
}

func printFieldErrors(w io.Writer, verr *core.ValidationError) {
	fmt.Fprintln(w, "The purchase was not accepted:")
	for _, f := range verr.Fields {
		fmt.Fprintf(w, "  - %s: %s\n", f.Field, f.Reason)
	}
	fmt.Fprintln(w, "Run /new to try again.")
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PURCHASE LEDGER COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PURCHASES")
	fmt.Fprintln(w, "  /new                             Enter an original purchase (interactive)")
	fmt.Fprintln(w, "  /list                            List saved original purchases")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  JOURNAL")
	fmt.Fprintln(w, "  /voucher <voucher-id>            Show a voucher")
	fmt.Fprintln(w, "  /reverse <voucher-id> [date]     Post the mirror of a voucher")
	fmt.Fprintln(w, "  /bal                             Trial balance")
	fmt.Fprintln(w, "  /payables                        Outstanding balance per supplier and agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /help                            Show this help")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
