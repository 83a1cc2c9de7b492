// Package cli is the command-line adapter over app.ApplicationService.
// Commands read JSON from stdin and write JSON or plain tables to stdout.
package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"purchase-ledger/internal/adapters/repl"
	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
	"purchase-ledger/internal/export"
)

// NewRootCommand builds the command tree. svc is resolved lazily so --help works
// without a database.
func NewRootCommand(svc func() (app.ApplicationService, error)) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "Capture original purchases and post them to the journal",
		Long: `ledger finalizes and saves original purchases and reports on the
resulting journal. Without a subcommand it starts an interactive session.

Example:
  ledger finalize < draft.json > preview.json
  jq .preview.purchase preview.json | ledger save --idempotency-key inv-42
  ledger balances`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			return repl.Run(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.AddCommand(
		finalizeCmd(svc),
		saveCmd(svc),
		listCmd(svc),
		optionsCmd(svc),
		voucherCmd(svc),
		reverseCmd(svc),
		balancesCmd(svc),
		payablesCmd(svc),
	)
	return root
}

func finalizeCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "finalize",
		Aliases: []string{"fin", "f"},
		Short:   "Validate a purchase draft read from stdin and print the preview",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			var draft core.PurchaseDraft
			if err := decodeInput(cmd.InOrStdin(), &draft); err != nil {
				return err
			}
			result, err := s.FinalizePurchase(cmd.Context(), draft)
			if err != nil {
				return err
			}
			for _, w := range result.Preview.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func saveCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a finalized purchase read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			var purchase core.OriginalPurchase
			if err := decodeInput(cmd.InOrStdin(), &purchase); err != nil {
				return err
			}
			if purchase.ID == "" {
				return fmt.Errorf("purchase id is required; run finalize first")
			}
			result, err := s.SavePurchase(cmd.Context(), app.SavePurchaseRequest{Purchase: purchase, IdempotencyKey: key})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&key, "idempotency-key", "", "reject a repeated save with the same key")
	return cmd
}

func listCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved original purchases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.ListPurchases(cmd.Context())
			if err != nil {
				return err
			}
			printPurchases(cmd.OutOrStdout(), result.Purchases)
			return nil
		},
	}
}

func optionsCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	var req app.OptionsRequest
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Print master data, narrowing dependent lists to the given parents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.GetOptions(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.MasterData)
		},
	}
	cmd.Flags().StringVar(&req.SupplierID, "supplier", "", "supplier id")
	cmd.Flags().StringVar(&req.OriginalTypeID, "type", "", "original type id")
	cmd.Flags().StringVar(&req.DivisionID, "division", "", "division id")
	return cmd
}

func voucherCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "voucher <voucher-id>",
		Short: "Print the entries of a voucher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.GetVoucher(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printVoucher(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func reverseCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	var date, key string
	cmd := &cobra.Command{
		Use:   "reverse <voucher-id>",
		Short: "Append the mirror of a voucher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.ReverseVoucher(cmd.Context(), app.ReverseVoucherRequest{
				VoucherID:      args[0],
				Date:           date,
				IdempotencyKey: key,
			})
			if err != nil {
				return err
			}
			printVoucher(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reversal date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "reject a repeated reversal with the same key")
	return cmd
}

func balancesCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "balances",
		Aliases: []string{"bal"},
		Short:   "Print the trial balance",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.GetTrialBalance(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "table":
				printTrialBalance(cmd.OutOrStdout(), result)
				return nil
			case "csv":
				return writeTrialBalanceCSV(cmd.OutOrStdout(), result)
			case "json":
				return printJSON(cmd.OutOrStdout(), result)
			case "xlsx":
				return export.WriteTrialBalanceXLSX(cmd.OutOrStdout(), result)
			}
			return fmt.Errorf("unknown format %q (table, csv, json, xlsx)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv, json or xlsx")
	return cmd
}

func payablesCmd(svc func() (app.ApplicationService, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "payables",
		Short: "Print outstanding balances per supplier and agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := svc()
			if err != nil {
				return err
			}
			result, err := s.GetPayables(cmd.Context())
			if err != nil {
				return err
			}
			printPayables(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func decodeInput(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPurchases(w io.Writer, purchases []core.OriginalPurchase) {
	fmt.Fprintf(w, "%-22s %-10s %-10s %-8s %10s %10s %-12s\n", "ID", "DATE", "SUPPLIER", "BATCH", "QTY", "RATE", "CONTAINER")
	fmt.Fprintln(w, strings.Repeat("-", 88))
	for _, p := range purchases {
		fmt.Fprintf(w, "%-22s %-10s %-10s %-8s %10s %10s %-12s\n",
			p.ID, p.Date, p.SupplierID, p.BatchNumber,
			p.QuantityPurchased.String(), p.Rate.String(), p.ContainerNumber)
	}
}

func printVoucher(w io.Writer, v *app.VoucherResult) {
	fmt.Fprintf(w, "Voucher %s\n", v.VoucherID)
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, e := range v.Entries {
		fmt.Fprintf(w, "  %-10s %-10s %12s %12s  %s\n", e.Date, e.Account,
			e.Debit.StringFixed(2), e.Credit.StringFixed(2), e.Description)
	}
	fmt.Fprintln(w, strings.Repeat("-", 78))
	fmt.Fprintf(w, "  %-21s %12s %12s\n", "TOTAL", v.TotalDebit.StringFixed(2), v.TotalCredit.StringFixed(2))
}

func printTrialBalance(w io.Writer, result *app.TrialBalanceResult) {
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
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintf(w, "  %-12s %14s %14s\n", "TOTAL", result.TotalDebit.StringFixed(2), result.TotalCredit.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func writeTrialBalanceCSV(w io.Writer, result *app.TrialBalanceResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Account", "Debit", "Credit", "Balance"})
	for _, b := range result.Accounts {
		_ = cw.Write([]string{b.Code, b.Debit.StringFixed(2), b.Credit.StringFixed(2), b.Balance.StringFixed(2)})
	}
	cw.Flush()
	return cw.Error()
}

func printPayables(w io.Writer, result *app.PayablesResult) {
	fmt.Fprintf(w, "Payables (%s)\n", result.Currency)
	fmt.Fprintf(w, "  %-18s %-12s %14s\n", "TYPE", "ENTITY", "BALANCE")
	for _, b := range result.Balances {
		fmt.Fprintf(w, "  %-18s %-12s %14s\n", b.EntityType, b.EntityID, b.Balance.StringFixed(2))
	}
}
