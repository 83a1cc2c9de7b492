package core

import "github.com/shopspring/decimal"

// DateLayout is the calendar date format used on purchases and journal entries.
const DateLayout = "2006-01-02"

// BaseCurrency is the currency every posted amount is normalized to.
const BaseCurrency = "USD"

type EntryType string

const (
	EntryTypeJournal  EntryType = "Journal"
	EntryTypeReversal EntryType = "Reversal"
)

type EntityType string

const (
	EntitySupplier         EntityType = "supplier"
	EntityFreightForwarder EntityType = "freightForwarder"
	EntityClearingAgent    EntityType = "clearingAgent"
	EntityCommissionAgent  EntityType = "commissionAgent"
)

// CostCategory identifies one of the ancillary cost kinds carried by a purchase.
type CostCategory string

const (
	CostFreight    CostCategory = "Freight"
	CostClearing   CostCategory = "Clearing"
	CostCommission CostCategory = "Commission"
)

// CostCategories lists the ancillary categories in posting order.
var CostCategories = []CostCategory{CostFreight, CostClearing, CostCommission}

// EntityType returns the subledger entity type an agent of this category is tagged with.
func (c CostCategory) EntityType() EntityType {
	switch c {
	case CostFreight:
		return EntityFreightForwarder
	case CostClearing:
		return EntityClearingAgent
	default:
		return EntityCommissionAgent
	}
}

// AncillaryCost is a freight, clearing or commission charge attached to a purchase.
// Amount is nil when nothing was entered.
type AncillaryCost struct {
	Category       CostCategory     `json:"category"`
	AgentID        string           `json:"agent_id,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Currency       string           `json:"currency"`
	ConversionRate decimal.Decimal  `json:"conversion_rate"`
}

// Applicable reports whether the cost takes part in valuation and posting:
// it needs an assigned agent and a positive amount.
func (c AncillaryCost) Applicable() bool {
	return c.AgentID != "" && c.Amount != nil && c.Amount.IsPositive()
}

// OriginalPurchase is a raw-goods purchase from a supplier.
type OriginalPurchase struct {
	ID                string           `json:"id"`
	Date              string           `json:"date"` // YYYY-MM-DD
	SupplierID        string           `json:"supplier_id"`
	SubSupplierID     string           `json:"sub_supplier_id,omitempty"`
	OriginalTypeID    string           `json:"original_type_id"`
	OriginalProductID string           `json:"original_product_id,omitempty"`
	QuantityPurchased decimal.Decimal  `json:"quantity_purchased"`
	Rate              decimal.Decimal  `json:"rate"`
	Currency          string           `json:"currency"`
	ConversionRate    decimal.Decimal  `json:"conversion_rate"`
	BatchNumber       string           `json:"batch_number"`
	ContainerNumber   string           `json:"container_number,omitempty"`
	DivisionID        string           `json:"division_id"`
	SubDivisionID     string           `json:"sub_division_id"`
	DiscountSurcharge *decimal.Decimal `json:"discount_surcharge,omitempty"`
	Freight           AncillaryCost    `json:"freight"`
	Clearing          AncillaryCost    `json:"clearing"`
	Commission        AncillaryCost    `json:"commission"`
}

// Costs returns the ancillary costs in posting order.
func (p *OriginalPurchase) Costs() []AncillaryCost {
	return []AncillaryCost{p.Freight, p.Clearing, p.Commission}
}

// FinishedGoodsPurchase is a stock-lot purchase. This flow only reads it for
// container and batch number checks.
type FinishedGoodsPurchase struct {
	ID              string `json:"id" yaml:"id"`
	Date            string `json:"date" yaml:"date"`
	SupplierID      string `json:"supplier_id" yaml:"supplier_id"`
	BatchNumber     string `json:"batch_number" yaml:"batch_number"`
	ContainerNumber string `json:"container_number,omitempty" yaml:"container_number"`
}

// JournalEntry is one line of a double-entry voucher. Exactly one of Debit and
// Credit is non-zero.
type JournalEntry struct {
	ID          string          `json:"id"`
	VoucherID   string          `json:"voucher_id"`
	Date        string          `json:"date"`
	EntryType   EntryType       `json:"entry_type"`
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	EntityID    string          `json:"entity_id,omitempty"`
	EntityType  EntityType      `json:"entity_type,omitempty"`
}

// VoucherID returns the voucher identifier grouping all entries of a purchase.
func VoucherID(purchaseID string) string {
	return "JV-" + purchaseID
}
