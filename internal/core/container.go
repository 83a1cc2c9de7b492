package core

import "strings"

// NormalizeContainerNumber trims and lower-cases a container number for comparison.
func NormalizeContainerNumber(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsDuplicateContainer reports whether candidate matches a container number in
// either purchase collection. Blank candidates never match.
func IsDuplicateContainer(candidate string, originals []OriginalPurchase, finished []FinishedGoodsPurchase) bool {
	want := NormalizeContainerNumber(candidate)
	if want == "" {
		return false
	}
	inOriginals := false
	for _, p := range originals {
		if p.ContainerNumber != "" && NormalizeContainerNumber(p.ContainerNumber) == want {
			inOriginals = true
			break
		}
	}
	inFinished := false
	for _, p := range finished {
		if p.ContainerNumber != "" && NormalizeContainerNumber(p.ContainerNumber) == want {
			inFinished = true
			break
		}
	}
	return inOriginals || inFinished
}

// checkContainer returns a *DuplicateContainerError when the purchase's container
// number is already used in the snapshot.
func checkContainer(containerNumber string, snap *Snapshot) error {
	if IsDuplicateContainer(containerNumber, snap.OriginalPurchases, snap.FinishedGoodsPurchases) {
		return &DuplicateContainerError{Value: containerNumber}
	}
	return nil
}
