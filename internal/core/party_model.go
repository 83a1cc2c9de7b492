package core

// Supplier is a vendor of original goods.
type Supplier struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	DefaultCurrency string `json:"default_currency,omitempty" yaml:"default_currency"`
}

// SubSupplier is a trading arm or branch of a Supplier.
type SubSupplier struct {
	ID         string `json:"id" yaml:"id"`
	SupplierID string `json:"supplier_id" yaml:"supplier_id"`
	Name       string `json:"name" yaml:"name"`
}

// Agent is a freight forwarder, clearing agent or commission agent.
type Agent struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type Division struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type SubDivision struct {
	ID         string `json:"id" yaml:"id"`
	DivisionID string `json:"division_id" yaml:"division_id"`
	Name       string `json:"name" yaml:"name"`
}

// OriginalType is the top level of the original-goods taxonomy.
type OriginalType struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type OriginalProduct struct {
	ID             string `json:"id" yaml:"id"`
	OriginalTypeID string `json:"original_type_id" yaml:"original_type_id"`
	Name           string `json:"name" yaml:"name"`
}

// MasterData is the reference data a purchase draft is checked against.
type MasterData struct {
	Suppliers         []Supplier        `json:"suppliers" yaml:"suppliers"`
	SubSuppliers      []SubSupplier     `json:"sub_suppliers" yaml:"sub_suppliers"`
	FreightForwarders []Agent           `json:"freight_forwarders" yaml:"freight_forwarders"`
	ClearingAgents    []Agent           `json:"clearing_agents" yaml:"clearing_agents"`
	CommissionAgents  []Agent           `json:"commission_agents" yaml:"commission_agents"`
	Divisions         []Division        `json:"divisions" yaml:"divisions"`
	SubDivisions      []SubDivision     `json:"sub_divisions" yaml:"sub_divisions"`
	OriginalTypes     []OriginalType    `json:"original_types" yaml:"original_types"`
	OriginalProducts  []OriginalProduct `json:"original_products" yaml:"original_products"`
}

// Snapshot is a read view of the application state taken for one finalize or
// save action.
type Snapshot struct {
	MasterData
	OriginalPurchases          []OriginalPurchase
	FinishedGoodsPurchases     []FinishedGoodsPurchase
	NextOriginalPurchaseNumber int64
}

func (s *Snapshot) supplier(id string) (Supplier, bool) {
	for _, v := range s.Suppliers {
		if v.ID == id {
			return v, true
		}
	}
	return Supplier{}, false
}

func (s *Snapshot) subSupplier(id string) (SubSupplier, bool) {
	for _, v := range s.SubSuppliers {
		if v.ID == id {
			return v, true
		}
	}
	return SubSupplier{}, false
}

func (s *Snapshot) originalType(id string) (OriginalType, bool) {
	for _, v := range s.OriginalTypes {
		if v.ID == id {
			return v, true
		}
	}
	return OriginalType{}, false
}

func (s *Snapshot) originalProduct(id string) (OriginalProduct, bool) {
	for _, v := range s.OriginalProducts {
		if v.ID == id {
			return v, true
		}
	}
	return OriginalProduct{}, false
}

func (s *Snapshot) division(id string) (Division, bool) {
	for _, v := range s.Divisions {
		if v.ID == id {
			return v, true
		}
	}
	return Division{}, false
}

func (s *Snapshot) subDivision(id string) (SubDivision, bool) {
	for _, v := range s.SubDivisions {
		if v.ID == id {
			return v, true
		}
	}
	return SubDivision{}, false
}

// agents returns the agent list serving the given cost category.
func (s *Snapshot) agents(c CostCategory) []Agent {
	switch c {
	case CostFreight:
		return s.FreightForwarders
	case CostClearing:
		return s.ClearingAgents
	default:
		return s.CommissionAgents
	}
}

// Agent looks up the agent assigned to a cost category.
func (s *Snapshot) Agent(c CostCategory, id string) (Agent, bool) {
	for _, a := range s.agents(c) {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// SupplierName returns the supplier's display name, or "N/A" when unknown.
func (s *Snapshot) SupplierName(id string) string {
	if sup, ok := s.supplier(id); ok {
		return sup.Name
	}
	return "N/A"
}

// Options narrows the dependent lists the way the purchase form does:
// sub-suppliers to supplierID, products to originalTypeID and sub-divisions to
// divisionID. A blank parent id empties its dependent list.
func (m MasterData) Options(supplierID, originalTypeID, divisionID string) MasterData {
	out := m
	out.SubSuppliers = filter(m.SubSuppliers, func(v SubSupplier) bool { return supplierID != "" && v.SupplierID == supplierID })
	out.OriginalProducts = filter(m.OriginalProducts, func(v OriginalProduct) bool {
		return originalTypeID != "" && v.OriginalTypeID == originalTypeID
	})
	out.SubDivisions = filter(m.SubDivisions, func(v SubDivision) bool { return divisionID != "" && v.DivisionID == divisionID })
	return out
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
