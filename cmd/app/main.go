// Command ledger is the command-line front end of the purchase ledger.
//
// Usage:
//
//	ledger finalize < draft.json
//	ledger save --idempotency-key K < purchase.json
//	ledger balances --format csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"purchase-ledger/internal/adapters/cli"
	"purchase-ledger/internal/app"
	"purchase-ledger/internal/bootstrap"
	"purchase-ledger/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var rt *bootstrap.Runtime
	open := func() (app.ApplicationService, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		// Logs go to stderr so stdout stays machine-readable.
		rt, err = bootstrap.Open(ctx, cfg, config.NewLoggerTo(cfg, os.Stderr))
		if err != nil {
			return nil, err
		}
		return rt.Service, nil
	}

	err := cli.NewRootCommand(open).ExecuteContext(ctx)
	if rt != nil {
		rt.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
