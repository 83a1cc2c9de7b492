package core

import "github.com/shopspring/decimal"

// CostValue is the USD value of one applicable ancillary cost.
type CostValue struct {
	Category CostCategory    `json:"category"`
	AgentID  string          `json:"agent_id"`
	Value    decimal.Decimal `json:"value"`
}

// Valuation holds the USD-normalized amounts of a purchase. Every component is
// rounded to cents before it is summed, so posted debits add up to GrandTotal.
type Valuation struct {
	ItemValue         decimal.Decimal `json:"item_value"`
	DiscountSurcharge decimal.Decimal `json:"discount_surcharge"`
	ItemDebit         decimal.Decimal `json:"item_debit"`
	Costs             []CostValue     `json:"costs"`
	AdditionalCosts   decimal.Decimal `json:"additional_costs"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Valuate computes the USD amounts of a purchase.
//
//	item value  = quantity × rate × conversion rate
//	cost value  = amount × cost conversion rate, for costs with an agent and amount > 0
//	grand total = item value + cost values + discount/surcharge
func Valuate(p *OriginalPurchase) Valuation {
	v := Valuation{
		ItemValue: roundCents(p.QuantityPurchased.Mul(p.Rate).Mul(p.ConversionRate)),
		Costs:     []CostValue{},
	}
	if p.DiscountSurcharge != nil {
		v.DiscountSurcharge = roundCents(*p.DiscountSurcharge)
	}
	v.ItemDebit = v.ItemValue.Add(v.DiscountSurcharge)

	for _, c := range p.Costs() {
		if !c.Applicable() {
			continue
		}
		value := roundCents(c.Amount.Mul(c.ConversionRate))
		v.Costs = append(v.Costs, CostValue{Category: c.Category, AgentID: c.AgentID, Value: value})
		v.AdditionalCosts = v.AdditionalCosts.Add(value)
	}
	v.GrandTotal = v.ItemDebit.Add(v.AdditionalCosts)
	return v
}
