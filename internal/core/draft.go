package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// More field failure reasons. ReasonNotPositive counts as an invalid number.
const (
	ReasonNotPositive     = "must be greater than zero"
	ReasonInvalidDate     = "invalid date, expected YYYY-MM-DD"
	ReasonUnknownCurrency = "unknown currency"
	ReasonExceedsValue    = "discount exceeds item value"
)

// CostDraft is the raw form input for one ancillary cost.
type CostDraft struct {
	AgentID        string `json:"agent_id" jsonschema_description:"Forwarder or agent id. Costs without an agent are not posted."`
	Amount         string `json:"amount" jsonschema_description:"Amount in the cost currency, as a decimal string"`
	Currency       string `json:"currency" jsonschema_description:"ISO 4217 code of the amount. Defaults to USD."`
	ConversionRate string `json:"conversion_rate" jsonschema_description:"Multiplier converting the amount to USD, > 0. Defaults to 1."`
}

// PurchaseDraft is the raw form input of an original purchase. Every field is
// a string exactly as entered; Finalize parses and validates it.
type PurchaseDraft struct {
	Date              string    `json:"date" jsonschema_description:"Purchase date in YYYY-MM-DD format. Defaults to today."`
	SupplierID        string    `json:"supplier_id" validate:"required" jsonschema_description:"Supplier id (required)"`
	SubSupplierID     string    `json:"sub_supplier_id" jsonschema_description:"Optional sub-supplier belonging to the supplier"`
	OriginalTypeID    string    `json:"original_type_id" validate:"required" jsonschema_description:"Original type id (required)"`
	OriginalProductID string    `json:"original_product_id" jsonschema_description:"Optional product belonging to the original type"`
	QuantityPurchased string    `json:"quantity_purchased" validate:"required" jsonschema_description:"Quantity purchased (required, > 0)"`
	Rate              string    `json:"rate" validate:"required" jsonschema_description:"Unit rate in the purchase currency (required, > 0)"`
	Currency          string    `json:"currency" jsonschema_description:"ISO 4217 code. Defaults to the supplier's default currency, then USD."`
	ConversionRate    string    `json:"conversion_rate" jsonschema_description:"Multiplier converting the purchase currency to USD, > 0. Defaults to 1."`
	BatchNumber       string    `json:"batch_number" jsonschema_description:"Batch number. Defaults to the next numeric batch."`
	ContainerNumber   string    `json:"container_number" jsonschema_description:"Container number, unique across all purchases (case-insensitive)"`
	DivisionID        string    `json:"division_id"`
	SubDivisionID     string    `json:"sub_division_id"`
	DiscountSurcharge string    `json:"discount_surcharge" jsonschema_description:"Signed USD amount: negative for a discount, positive for a surcharge"`
	Freight           CostDraft `json:"freight"`
	Clearing          CostDraft `json:"clearing"`
	Commission        CostDraft `json:"commission"`
}

// Normalize trims every field of the draft.
func (d *PurchaseDraft) Normalize() {
	for _, f := range []*string{
		&d.Date, &d.SupplierID, &d.SubSupplierID, &d.OriginalTypeID, &d.OriginalProductID,
		&d.QuantityPurchased, &d.Rate, &d.Currency, &d.ConversionRate, &d.BatchNumber,
		&d.DivisionID, &d.SubDivisionID, &d.DiscountSurcharge,
	} {
		*f = strings.TrimSpace(*f)
	}
	for _, c := range []*CostDraft{&d.Freight, &d.Clearing, &d.Commission} {
		c.AgentID = strings.TrimSpace(c.AgentID)
		c.Amount = strings.TrimSpace(c.Amount)
		c.Currency = strings.TrimSpace(c.Currency)
		c.ConversionRate = strings.TrimSpace(c.ConversionRate)
	}
	// ContainerNumber keeps the user's text; comparisons normalize it.
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// missingFields returns the json names of blank required fields.
func (d *PurchaseDraft) missingFields() ([]string, error) {
	err := draftValidator.Struct(d)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("validate draft: %w", err)
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field())
	}
	return out, nil
}

// buildPurchase parses a normalized draft against snap. The returned purchase has
// no ID yet. Warnings describe ancillary amounts that will not be posted.
func buildPurchase(d PurchaseDraft, snap *Snapshot, today time.Time) (*OriginalPurchase, []string, error) {
	verr := &ValidationError{}

	missing, err := d.missingFields()
	if err != nil {
		return nil, nil, err
	}
	for _, f := range missing {
		verr.add(f, ReasonRequired)
	}

	p := &OriginalPurchase{
		SupplierID:        d.SupplierID,
		SubSupplierID:     d.SubSupplierID,
		OriginalTypeID:    d.OriginalTypeID,
		OriginalProductID: d.OriginalProductID,
		BatchNumber:       d.BatchNumber,
		ContainerNumber:   d.ContainerNumber,
		DivisionID:        d.DivisionID,
		SubDivisionID:     d.SubDivisionID,
	}

	if d.Date == "" {
		p.Date = today.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, d.Date); err != nil {
		verr.add("date", ReasonInvalidDate)
	} else {
		p.Date = d.Date
	}

	if d.QuantityPurchased != "" {
		p.QuantityPurchased, _ = parsePositive(verr, "quantity_purchased", d.QuantityPurchased)
	}
	if d.Rate != "" {
		p.Rate, _ = parsePositive(verr, "rate", d.Rate)
	}
	p.ConversionRate = parseRate(verr, "conversion_rate", d.ConversionRate)

	if d.DiscountSurcharge != "" {
		if v, ok := parseNumber(verr, "discount_surcharge", d.DiscountSurcharge); ok && !v.IsZero() {
			p.DiscountSurcharge = &v
		}
	}

	checkReferences(verr, p, snap)

	code := d.Currency
	if code == "" {
		if sup, ok := snap.supplier(d.SupplierID); ok && sup.DefaultCurrency != "" {
			code = sup.DefaultCurrency
		} else {
			code = BaseCurrency
		}
	}
	p.Currency = parseCurrency(verr, "currency", code)

	var warnings []string
	for _, c := range []struct {
		category CostCategory
		field    string
		draft    CostDraft
		target   *AncillaryCost
	}{
		{CostFreight, "freight", d.Freight, &p.Freight},
		{CostClearing, "clearing", d.Clearing, &p.Clearing},
		{CostCommission, "commission", d.Commission, &p.Commission},
	} {
		cost, warning := parseCost(verr, c.category, c.field, c.draft, snap)
		*c.target = cost
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if p.BatchNumber == "" {
		p.BatchNumber = NextBatchNumber(snap.OriginalPurchases, snap.FinishedGoodsPurchases)
	}

	if len(verr.Fields) == 0 && !Valuate(p).ItemDebit.IsPositive() {
		verr.add("discount_surcharge", ReasonExceedsValue)
	}

	if err := verr.orNil(); err != nil {
		return nil, nil, err
	}
	return p, warnings, nil
}

// validatePurchase checks a purchase record that did not come from buildPurchase,
// such as the record a client sends back to Save. Cost categories are reset from
// the field each cost sits in so posting never trusts the client's labels.
func validatePurchase(p *OriginalPurchase, snap *Snapshot) error {
	verr := &ValidationError{}

	p.Freight.Category = CostFreight
	p.Clearing.Category = CostClearing
	p.Commission.Category = CostCommission

	if strings.TrimSpace(p.SupplierID) == "" {
		verr.add("supplier_id", ReasonRequired)
	}
	if strings.TrimSpace(p.OriginalTypeID) == "" {
		verr.add("original_type_id", ReasonRequired)
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		verr.add("date", ReasonInvalidDate)
	}
	for _, f := range []struct {
		field string
		value decimal.Decimal
	}{
		{"quantity_purchased", p.QuantityPurchased},
		{"rate", p.Rate},
		{"conversion_rate", p.ConversionRate},
	} {
		if !f.value.IsPositive() {
			verr.add(f.field, ReasonNotPositive)
		}
	}
	if _, err := currency.ParseISO(p.Currency); err != nil {
		verr.add("currency", ReasonUnknownCurrency)
	}

	checkReferences(verr, p, snap)

	for _, c := range []struct {
		field string
		cost  AncillaryCost
	}{
		{"freight", p.Freight},
		{"clearing", p.Clearing},
		{"commission", p.Commission},
	} {
		if c.cost.AgentID != "" {
			if _, ok := snap.Agent(c.cost.Category, c.cost.AgentID); !ok {
				verr.add(c.field+".agent_id", ReasonUnknown)
			}
		}
		if c.cost.Amount == nil {
			continue
		}
		if !c.cost.ConversionRate.IsPositive() {
			verr.add(c.field+".conversion_rate", ReasonNotPositive)
		}
		if _, err := currency.ParseISO(c.cost.Currency); err != nil {
			verr.add(c.field+".currency", ReasonUnknownCurrency)
		}
	}

	if len(verr.Fields) == 0 && !Valuate(p).ItemDebit.IsPositive() {
		verr.add("discount_surcharge", ReasonExceedsValue)
	}
	return verr.orNil()
}

func checkReferences(verr *ValidationError, p *OriginalPurchase, snap *Snapshot) {
	if p.SupplierID != "" {
		if _, ok := snap.supplier(p.SupplierID); !ok {
			verr.add("supplier_id", ReasonUnknown)
		}
	}
	if p.SubSupplierID != "" {
		if ss, ok := snap.subSupplier(p.SubSupplierID); !ok {
			verr.add("sub_supplier_id", ReasonUnknown)
		} else if ss.SupplierID != p.SupplierID {
			verr.add("sub_supplier_id", "does not belong to supplier")
		}
	}
	if p.OriginalTypeID != "" {
		if _, ok := snap.originalType(p.OriginalTypeID); !ok {
			verr.add("original_type_id", ReasonUnknown)
		}
	}
	if p.OriginalProductID != "" {
		if op, ok := snap.originalProduct(p.OriginalProductID); !ok {
			verr.add("original_product_id", ReasonUnknown)
		} else if op.OriginalTypeID != p.OriginalTypeID {
			verr.add("original_product_id", "does not belong to original type")
		}
	}
	if p.DivisionID != "" {
		if _, ok := snap.division(p.DivisionID); !ok {
			verr.add("division_id", ReasonUnknown)
		}
	}
	if p.SubDivisionID != "" {
		if sd, ok := snap.subDivision(p.SubDivisionID); !ok {
			verr.add("sub_division_id", ReasonUnknown)
		} else if sd.DivisionID != p.DivisionID {
			verr.add("sub_division_id", "does not belong to division")
		}
	}
}

// parseCost parses one ancillary cost. An amount without an agent is kept on the
// record and reported as a warning; it is excluded from posting.
func parseCost(verr *ValidationError, category CostCategory, field string, d CostDraft, snap *Snapshot) (AncillaryCost, string) {
	cost := AncillaryCost{
		Category:       category,
		AgentID:        d.AgentID,
		ConversionRate: parseRate(verr, field+".conversion_rate", d.ConversionRate),
	}
	code := d.Currency
	if code == "" {
		code = BaseCurrency
	}
	cost.Currency = parseCurrency(verr, field+".currency", code)

	if d.AgentID != "" {
		if _, ok := snap.Agent(category, d.AgentID); !ok {
			verr.add(field+".agent_id", ReasonUnknown)
		}
	}
	if d.Amount == "" {
		return cost, ""
	}
	amount, ok := parseNumber(verr, field+".amount", d.Amount)
	if !ok || amount.IsZero() {
		return cost, ""
	}
	cost.Amount = &amount
	if d.AgentID == "" && amount.IsPositive() {
		return cost, fmt.Sprintf("%s amount %s entered without an agent; it will not be posted", category, amount.String())
	}
	return cost, ""
}

func parseNumber(verr *ValidationError, field, raw string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		verr.add(field, ReasonInvalid)
		return decimal.Zero, false
	}
	return v, true
}

func parsePositive(verr *ValidationError, field, raw string) (decimal.Decimal, bool) {
	v, ok := parseNumber(verr, field, raw)
	if !ok {
		return v, false
	}
	if !v.IsPositive() {
		verr.add(field, ReasonNotPositive)
		return v, false
	}
	return v, true
}

// parseRate parses a conversion rate, defaulting blank input to 1.
func parseRate(verr *ValidationError, field, raw string) decimal.Decimal {
	if raw == "" {
		return decimal.NewFromInt(1)
	}
	v, _ := parsePositive(verr, field, raw)
	return v
}

func parseCurrency(verr *ValidationError, field, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		verr.add(field, ReasonUnknownCurrency)
		return strings.ToUpper(code)
	}
	return unit.String()
}
