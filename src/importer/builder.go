package importer

import (
	"fmt"
	"strings"

	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
)

// BuildOptions carries everything BuildTransactions needs beyond the
// rows themselves.
type BuildOptions struct {
	AccountID string
	// CategoryIDs maps lowercased category names to ledger category ids.
	CategoryIDs map[string]string
	// Duplicates, when set, drops groups the ledger already has.
	Duplicates *DuplicateIndex
}

// BuildResult is the outcome of one build pass, before submission.
type BuildResult struct {
	Transactions      []ynab.NewTransaction
	SkippedDuplicates int
	SkippedZeroAmount int
}

type rowGroup struct {
	key  string
	rows []models.CanonicalRow
}

// CategoryIDMap indexes ledger categories by lowercased name for
// BuildOptions.CategoryIDs.
func CategoryIDMap(categories []ynab.Category) map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[strings.ToLower(c.Name)] = c.ID
	}
	return m
}

// BuildTransactions turns canonical rows into ledger transactions:
// zero-amount rows are dropped, rows sharing an order id are grouped,
// zero-total groups are dropped, groups already in the ledger are
// skipped, and each surviving group becomes one transaction, with
// splits when its rows span multiple categories. Import ids are
// deterministic so resubmitting the same file is safe server-side too.
func BuildTransactions(rows []models.CanonicalRow, opts BuildOptions) BuildResult {
	var result BuildResult

	var groups []rowGroup
	byKey := make(map[string]int)
	for _, row := range rows {
		if row.Amount == 0 {
			result.SkippedZeroAmount++
			continue
		}
		key := row.OrderID
		if key == "" {
			// No order id: the row stands alone.
			key = fmt.Sprintf("%s|%d|%s", row.Date, row.Amount, truncateRunes(row.Memo, dedupeMemoPrefix))
		}
		if i, ok := byKey[key]; ok && row.OrderID != "" {
			groups[i].rows = append(groups[i].rows, row)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, rowGroup{key: key, rows: []models.CanonicalRow{row}})
	}

	occurrences := make(map[string]int)
	for _, g := range groups {
		var total int64
		for _, row := range g.rows {
			total += row.Amount
		}
		if total == 0 {
			// A purchase and its refund cancelling out, most often.
			result.SkippedZeroAmount++
			continue
		}

		date := g.rows[0].Date
		for _, row := range g.rows[1:] {
			if row.Date < date {
				date = row.Date
			}
		}

		if opts.Duplicates != nil && opts.Duplicates.IsDuplicate(date, total) {
			result.SkippedDuplicates++
			continue
		}

		tx := ynab.NewTransaction{
			AccountID: opts.AccountID,
			Date:      date,
			Amount:    total,
			PayeeName: g.rows[0].Payee,
			Memo:      groupMemo(g.rows),
			Cleared:   "uncleared",
			Approved:  false,
			ImportID:  nextImportID(occurrences, total, date),
		}

		categoryIDs, amounts, memos := splitByCategory(g.rows, opts.CategoryIDs)
		if len(categoryIDs) == 1 {
			tx.CategoryID = categoryIDs[0]
		} else {
			for i, id := range categoryIDs {
				tx.Subtransactions = append(tx.Subtransactions, ynab.SubTransaction{
					Amount:     amounts[i],
					CategoryID: id,
					Memo:       memos[i],
				})
			}
		}

		result.Transactions = append(result.Transactions, tx)
	}

	return result
}

// splitByCategory aggregates a group's rows per resolved category id,
// preserving first-seen order. Rows whose category name resolves to no
// ledger id share a single unset-category key rather than guessing.
func splitByCategory(rows []models.CanonicalRow, idMap map[string]string) (categoryIDs []string, amounts []int64, memos []string) {
	index := make(map[string]int)
	for _, row := range rows {
		id := idMap[strings.ToLower(row.Category)]
		i, ok := index[id]
		if !ok {
			i = len(categoryIDs)
			index[id] = i
			categoryIDs = append(categoryIDs, id)
			amounts = append(amounts, 0)
			memos = append(memos, "")
		}
		amounts[i] += row.Amount
		memos[i] = joinMemo(memos[i], row.Memo)
	}
	return categoryIDs, amounts, memos
}

func groupMemo(rows []models.CanonicalRow) string {
	memo := ""
	for _, row := range rows {
		memo = joinMemo(memo, row.Memo)
	}
	return memo
}

func joinMemo(existing, memo string) string {
	if existing == "" {
		return truncateRunes(memo, maxMemoLen)
	}
	if memo == "" || strings.Contains(existing, memo) {
		return existing
	}
	return truncateRunes(existing+"; "+memo, maxMemoLen)
}

// nextImportID builds a deterministic import id in the ledger's own
// convention, with an occurrence counter disambiguating same-amount
// same-day transactions within the batch.
func nextImportID(occurrences map[string]int, amount int64, date string) string {
	key := fmt.Sprintf("%d:%s", amount, date)
	occurrences[key]++
	return fmt.Sprintf("YNAB:%d:%s:%d", amount, date, occurrences[key])
}
