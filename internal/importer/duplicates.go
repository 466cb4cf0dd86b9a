package importer

import (
	"strings"
	"time"
	"unicode/utf8"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// DefaultDuplicateSimilarity is the description similarity from which two
// otherwise identical transactions are considered the same.
const DefaultDuplicateSimilarity = 0.9

// DuplicateDetector flags candidates that repeat an already stored
// transaction or an earlier row of the same batch.
type DuplicateDetector struct {
	threshold float64
}

// NewDuplicateDetector returns a detector; thresholds outside (0, 1] fall
// back to DefaultDuplicateSimilarity.
func NewDuplicateDetector(threshold float64) *DuplicateDetector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDuplicateSimilarity
	}
	return &DuplicateDetector{threshold: threshold}
}

type fingerprint struct {
	date        time.Time
	amount      decimal.Decimal
	direction   models.Direction
	description string
}

// Filter drops duplicates and returns the kept candidates with the number
// skipped. Candidate order is preserved.
func (d *DuplicateDetector) Filter(candidates []models.Candidate, existing []models.Transaction) ([]models.Candidate, int) {
	seen := make([]fingerprint, 0, len(existing)+len(candidates))
	for _, tx := range existing {
		seen = append(seen, fingerprint{tx.Date, tx.Amount, tx.Direction, tx.Description})
	}

	kept := make([]models.Candidate, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		fp := fingerprint{c.Date, c.Amount, c.Direction, c.Description}
		if d.seenBefore(fp, seen) {
			skipped++
			continue
		}
		seen = append(seen, fp)
		kept = append(kept, c)
	}
	return kept, skipped
}

func (d *DuplicateDetector) seenBefore(fp fingerprint, seen []fingerprint) bool {
	for _, s := range seen {
		if s.direction != fp.direction || !s.amount.Equal(fp.amount) || !dateutils.SameDay(s.date, fp.date) {
			continue
		}
		if Similarity(s.description, fp.description) >= d.threshold {
			return true
		}
	}
	return false
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over the
// case-folded, trimmed descriptions. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
