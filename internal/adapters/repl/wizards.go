package repl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
)

var errCancelled = errors.New("cancelled")

// choice is one selectable master-data row.
type choice struct {
	ID   string
	Name string
}

// newPurchase walks through the purchase form. Dependent lists are narrowed to
// the parent picked earlier. Typing "cancel" at any prompt aborts.
func (s *session) newPurchase() error {
	err := s.purchaseWizard()
	if errors.Is(err, errCancelled) {
		fmt.Fprintln(s.out, "Purchase entry cancelled.")
		return nil
	}
	return err
}

func (s *session) purchaseWizard() error {
	opts, err := s.svc.GetOptions(s.ctx, app.OptionsRequest{})
	if err != nil {
		return err
	}
	md := opts.MasterData

	var d core.PurchaseDraft
	if d.Date, err = s.field("Date (YYYY-MM-DD, blank for today): "); err != nil {
		return err
	}
	if d.SupplierID, err = s.pick("Supplier", suppliers(md.Suppliers)); err != nil {
		return err
	}
	if d.OriginalTypeID, err = s.pick("Original type", originalTypes(md.OriginalTypes)); err != nil {
		return err
	}
	if d.DivisionID, err = s.pick("Division", divisions(md.Divisions)); err != nil {
		return err
	}

	narrowed, err := s.svc.GetOptions(s.ctx, app.OptionsRequest{
		SupplierID:     d.SupplierID,
		OriginalTypeID: d.OriginalTypeID,
		DivisionID:     d.DivisionID,
	})
	if err != nil {
		return err
	}
	if d.SubSupplierID, err = s.pick("Sub-supplier", subSuppliers(narrowed.MasterData.SubSuppliers)); err != nil {
		return err
	}
	if d.OriginalProductID, err = s.pick("Product", products(narrowed.MasterData.OriginalProducts)); err != nil {
		return err
	}
	if d.SubDivisionID, err = s.pick("Sub-division", subDivisions(narrowed.MasterData.SubDivisions)); err != nil {
		return err
	}

	for _, f := range []struct {
		label  string
		target *string
	}{
		{"Quantity purchased: ", &d.QuantityPurchased},
		{"Rate: ", &d.Rate},
		{"Currency (blank for supplier default): ", &d.Currency},
		{"Conversion rate to USD (blank for 1): ", &d.ConversionRate},
		{"Batch number (blank for next): ", &d.BatchNumber},
		{"Container number: ", &d.ContainerNumber},
		{"Discount(-)/surcharge(+) USD: ", &d.DiscountSurcharge},
	} {
		if *f.target, err = s.field(f.label); err != nil {
			return err
		}
	}

	for _, c := range []struct {
		name   string
		agents []core.Agent
		target *core.CostDraft
	}{
		{"Freight", md.FreightForwarders, &d.Freight},
		{"Clearing", md.ClearingAgents, &d.Clearing},
		{"Commission", md.CommissionAgents, &d.Commission},
	} {
		if err := s.costDraft(c.name, c.agents, c.target); err != nil {
			return err
		}
	}

	preview, err := s.svc.FinalizePurchase(s.ctx, d)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			printFieldErrors(s.out, verr)
			return nil
		}
		return err
	}
	printPreview(s.out, preview.Preview)

	answer, err := s.field("Save this purchase? (yes/no): ")
	if err != nil {
		return err
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Fprintln(s.out, "Purchase discarded.")
		return nil
	}

	saved, err := s.svc.SavePurchase(s.ctx, app.SavePurchaseRequest{Purchase: preview.Preview.Purchase})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s, voucher %s.\n", saved.Posted.Purchase.ID, saved.Posted.VoucherID)
	return nil
}

func (s *session) costDraft(name string, agents []core.Agent, c *core.CostDraft) error {
	amount, err := s.field(name + " amount (blank to skip): ")
	if err != nil || amount == "" {
		return err
	}
	c.Amount = amount
	if c.AgentID, err = s.pick(name+" agent", agentChoices(agents)); err != nil {
		return err
	}
	if c.Currency, err = s.field(name + " currency (blank for USD): "); err != nil {
		return err
	}
	c.ConversionRate, err = s.field(name + " conversion rate (blank for 1): ")
	return err
}

// field reads a free-text answer.
func (s *session) field(label string) (string, error) {
	v, err := s.prompt(label)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(v, "cancel") {
		return "", errCancelled
	}
	return v, nil
}

// pick lists choices and accepts a list number, an id, or blank for none.
// An unrecognised answer is passed through so validation can report it.
func (s *session) pick(label string, choices []choice) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}
	fmt.Fprintf(s.out, "%s:\n", label)
	for i, c := range choices {
		fmt.Fprintf(s.out, "  %d) %-10s %s\n", i+1, c.ID, c.Name)
	}
	v, err := s.field("  choice (number or id, blank for none): ")
	if err != nil || v == "" {
		return "", err
	}
	if n, convErr := strconv.Atoi(v); convErr == nil && n >= 1 && n <= len(choices) {
		return choices[n-1].ID, nil
	}
	return v, nil
}

func suppliers(in []core.Supplier) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func subSuppliers(in []core.SubSupplier) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func originalTypes(in []core.OriginalType) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func products(in []core.OriginalProduct) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func divisions(in []core.Division) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func subDivisions(in []core.SubDivision) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}

func agentChoices(in []core.Agent) []choice {
	out := make([]choice, len(in))
	for i, v := range in {
		out[i] = choice{v.ID, v.Name}
	}
	return out
}
