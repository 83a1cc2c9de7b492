package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IDGenerator produces a purchase identifier from the running purchase counter,
// the purchase date and the supplier's name.
type IDGenerator interface {
	Generate(seq int64, date time.Time, supplierName string) string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func(seq int64, date time.Time, supplierName string) string

func (f IDGeneratorFunc) Generate(seq int64, date time.Time, supplierName string) string {
	return f(seq, date, supplierName)
}

// DefaultIDGenerator formats ids as OP-<seq>-<DDMMYY>-<SUP>, e.g. OP-0042-190326-ACM.
var DefaultIDGenerator IDGenerator = IDGeneratorFunc(generateOriginalPurchaseID)

func generateOriginalPurchaseID(seq int64, date time.Time, supplierName string) string {
	return fmt.Sprintf("OP-%04d-%s-%s", seq, date.Format("020106"), supplierPrefix(supplierName))
}

// supplierPrefix returns the first three letters of name folded to upper-case
// ASCII, padded with X.
func supplierPrefix(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(folded) {
		if r < 'A' || r > 'Z' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == 3 {
			break
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

// firstBatchNumber is used when no numeric batch number exists yet.
const firstBatchNumber = "101"

// NextBatchNumber returns the highest all-digit batch number across both purchase
// collections plus one.
func NextBatchNumber(originals []OriginalPurchase, finished []FinishedGoodsPurchase) string {
	var highest int64
	consider := func(bn string) {
		if bn == "" || strings.IndexFunc(bn, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return
		}
		n, err := strconv.ParseInt(bn, 10, 64)
		if err != nil {
			return
		}
		if n > highest {
			highest = n
		}
	}
	for _, p := range originals {
		consider(p.BatchNumber)
	}
	for _, p := range finished {
		consider(p.BatchNumber)
	}
	if highest == 0 {
		return firstBatchNumber
	}
	return strconv.FormatInt(highest+1, 10)
}
