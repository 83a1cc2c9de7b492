package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"purchase-ledger/internal/app"
)

var errExit = errors.New("exit")

// session carries the streams of one interactive run.
type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
}

// Run starts the interactive loop. It returns when the input ends or the user
// types /exit.
func Run(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error {
	s := &session{ctx: ctx, svc: svc, reader: bufio.NewReader(in), out: out}

	fmt.Fprintln(out, "Purchase Ledger")
	fmt.Fprintln(out, "Type /new to enter an original purchase, or /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "> ")
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			fmt.Fprintln(out, "Commands start with /. Type /help for the list.")
			continue
		}
		if err := s.dispatch(line); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye.")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "new", "purchase":
		return s.newPurchase()

	case "list", "purchases":
		result, err := s.svc.ListPurchases(s.ctx)
		if err != nil {
			return err
		}
		printPurchases(s.out, result.Purchases)

	case "voucher":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /voucher <voucher-id>")
			return nil
		}
		result, err := s.svc.GetVoucher(s.ctx, args[0])
		if err != nil {
			return err
		}
		printVoucher(s.out, result)

	case "reverse":
		if len(args) < 1 {
			fmt.Fprintln(s.out, "Usage: /reverse <voucher-id> [YYYY-MM-DD]")
			return nil
		}
		req := app.ReverseVoucherRequest{VoucherID: args[0]}
		if len(args) > 1 {
			req.Date = args[1]
		}
		result, err := s.svc.ReverseVoucher(s.ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Voucher %s reversed.\n", args[0])
		printVoucher(s.out, result)

	case "bal", "balances":
		result, err := s.svc.GetTrialBalance(s.ctx)
		if err != nil {
			return err
		}
		printBalances(s.out, result)

	case "payables":
		result, err := s.svc.GetPayables(s.ctx)
		if err != nil {
			return err
		}
		printPayables(s.out, result)

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command /%s. Type /help.\n", cmd)
	}
	return nil
}

// readLine returns the next trimmed input line. A final line without a newline
// is returned before io.EOF.
func (s *session) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// prompt prints label and reads one answer.
func (s *session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}
