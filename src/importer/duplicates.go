package importer

import (
	"time"

	"amazon-ynab-server/src/ynab"
)

// DefaultDuplicateDays is the date window, in days inclusive, within
// which an existing ledger transaction of identical amount counts as a
// duplicate of an incoming row.
const DefaultDuplicateDays = 5

// DuplicateIndex answers "does the ledger already have this?" for
// incoming rows. Amounts must match exactly in milliunits; dates may
// differ by up to the configured tolerance. Built once per import batch
// from a single windowed fetch.
type DuplicateIndex struct {
	byAmount map[int64][]time.Time
	days     int
}

// NewDuplicateIndex indexes existing transactions by exact amount. A
// non-positive days falls back to DefaultDuplicateDays. Transactions
// with unparseable dates are skipped.
func NewDuplicateIndex(existing []ynab.Transaction, days int) *DuplicateIndex {
	if days <= 0 {
		days = DefaultDuplicateDays
	}
	idx := &DuplicateIndex{
		byAmount: make(map[int64][]time.Time, len(existing)),
		days:     days,
	}
	for _, tx := range existing {
		date, ok := parseCalendarDate(tx.Date)
		if !ok {
			continue
		}
		idx.byAmount[tx.Amount] = append(idx.byAmount[tx.Amount], date)
	}
	return idx
}

// IsDuplicate reports whether a transaction of this exact amount exists
// within the date window. The window is inclusive on both ends.
func (idx *DuplicateIndex) IsDuplicate(date string, amount int64) bool {
	dates, ok := idx.byAmount[amount]
	if !ok {
		return false
	}
	d, ok := parseCalendarDate(date)
	if !ok {
		return false
	}
	for _, existing := range dates {
		if dayDistance(d, existing) <= idx.days {
			return true
		}
	}
	return false
}

// FetchWindowStart returns the since date for the existing-transaction
// fetch backing an index: the earliest incoming date minus the
// tolerance, so boundary duplicates are still visible.
func FetchWindowStart(minDate string, days int) (string, bool) {
	if days <= 0 {
		days = DefaultDuplicateDays
	}
	d, ok := parseCalendarDate(minDate)
	if !ok {
		return "", false
	}
	return d.AddDate(0, 0, -days).Format("2006-01-02"), true
}
