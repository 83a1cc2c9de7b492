package store

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"purchase-ledger/internal/core"
)

// Seed is the reference data a store starts from.
type Seed struct {
	core.MasterData        `yaml:",inline"`
	FinishedGoodsPurchases []core.FinishedGoodsPurchase `yaml:"finished_goods_purchases"`
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes a YAML seed document and checks that every parent
// reference resolves.
func LoadSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.check(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func (s Seed) check() error {
	ids := func(n int, id func(int) string) map[string]bool {
		out := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			out[id(i)] = true
		}
		return out
	}
	suppliers := ids(len(s.Suppliers), func(i int) string { return s.Suppliers[i].ID })
	types := ids(len(s.OriginalTypes), func(i int) string { return s.OriginalTypes[i].ID })
	divisions := ids(len(s.Divisions), func(i int) string { return s.Divisions[i].ID })

	for _, v := range s.SubSuppliers {
		if !suppliers[v.SupplierID] {
			return fmt.Errorf("seed: sub supplier %s references unknown supplier %s", v.ID, v.SupplierID)
		}
	}
	for _, v := range s.OriginalProducts {
		if !types[v.OriginalTypeID] {
			return fmt.Errorf("seed: original product %s references unknown type %s", v.ID, v.OriginalTypeID)
		}
	}
	for _, v := range s.SubDivisions {
		if !divisions[v.DivisionID] {
			return fmt.Errorf("seed: sub division %s references unknown division %s", v.ID, v.DivisionID)
		}
	}
	return nil
}
