package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
)

var testCategoryIDs = map[string]string{
	"electronics":   "cat-elec",
	"kids supplies": "cat-kids",
	"uncategorized": "cat-unc",
}

func TestBuildTransactionsSingleRows(t *testing.T) {
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Payee: DefaultPayee, Memo: "Echo Dot", Amount: -45000, Category: "Electronics"},
		{Date: "2024-03-16", Payee: DefaultPayee, Memo: "Nothing", Amount: 0, Category: "Electronics"},
	}

	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 1, result.SkippedZeroAmount)

	tx := result.Transactions[0]
	assert.Equal(t, "acct-1", tx.AccountID)
	assert.Equal(t, "2024-03-15", tx.Date)
	assert.Equal(t, int64(-45000), tx.Amount)
	assert.Equal(t, DefaultPayee, tx.PayeeName)
	assert.Equal(t, "Echo Dot", tx.Memo)
	assert.Equal(t, "cat-elec", tx.CategoryID)
	assert.Equal(t, "uncleared", tx.Cleared)
	assert.False(t, tx.Approved)
	assert.Equal(t, "YNAB:-45000:2024-03-15:1", tx.ImportID)
	assert.Empty(t, tx.Subtransactions)
}

func TestBuildTransactionsSplits(t *testing.T) {
	// One order spanning two categories becomes one transaction with
	// two sublines.
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Payee: DefaultPayee, Memo: "HDMI cable", Amount: -10000, Category: "Electronics", OrderID: "111-222"},
		{Date: "2024-03-15", Payee: DefaultPayee, Memo: "LEGO set", Amount: -5000, Category: "Kids Supplies", OrderID: "111-222"},
	}

	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, int64(-15000), tx.Amount)
	assert.Empty(t, tx.CategoryID)
	require.Len(t, tx.Subtransactions, 2)
	assert.Equal(t, int64(-10000), tx.Subtransactions[0].Amount)
	assert.Equal(t, "cat-elec", tx.Subtransactions[0].CategoryID)
	assert.Equal(t, "HDMI cable", tx.Subtransactions[0].Memo)
	assert.Equal(t, int64(-5000), tx.Subtransactions[1].Amount)
	assert.Equal(t, "cat-kids", tx.Subtransactions[1].CategoryID)
}

func TestBuildTransactionsSingleCategoryGroup(t *testing.T) {
	// Multiple lines, one category: no splits, amounts summed.
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Payee: DefaultPayee, Memo: "HDMI cable", Amount: -10000, Category: "Electronics", OrderID: "111-222"},
		{Date: "2024-03-14", Payee: DefaultPayee, Memo: "USB hub", Amount: -5000, Category: "Electronics", OrderID: "111-222"},
	}

	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, int64(-15000), tx.Amount)
	assert.Equal(t, "cat-elec", tx.CategoryID)
	assert.Empty(t, tx.Subtransactions)
	// Group date is the earliest line's date.
	assert.Equal(t, "2024-03-14", tx.Date)
	assert.Equal(t, "HDMI cable; USB hub", tx.Memo)
}

func TestBuildTransactionsZeroTotalGroup(t *testing.T) {
	// Purchase and refund cancelling within one order.
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Memo: "Echo Dot", Amount: -45000, Category: "Electronics", OrderID: "111-222"},
		{Date: "2024-03-20", Memo: "Refund Echo Dot", Amount: 45000, Category: "Electronics", OrderID: "111-222"},
	}

	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	assert.Empty(t, result.Transactions)
	assert.Equal(t, 1, result.SkippedZeroAmount)
}

func TestBuildTransactionsSkipsDuplicates(t *testing.T) {
	existing := []ynab.Transaction{
		{Date: "2024-03-13", Amount: -45000},
	}
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Memo: "Echo Dot", Amount: -45000, Category: "Electronics"},
		{Date: "2024-03-15", Memo: "LEGO set", Amount: -20000, Category: "Kids Supplies"},
	}

	result := BuildTransactions(rows, BuildOptions{
		AccountID:   "acct-1",
		CategoryIDs: testCategoryIDs,
		Duplicates:  NewDuplicateIndex(existing, 5),
	})
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "LEGO set", result.Transactions[0].Memo)
	assert.Equal(t, 1, result.SkippedDuplicates)
}

func TestBuildTransactionsImportIDOccurrences(t *testing.T) {
	// Two genuinely distinct same-amount same-day purchases get
	// distinct import ids.
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Memo: "Coffee beans", Amount: -20000, Category: "Uncategorized"},
		{Date: "2024-03-15", Memo: "More coffee beans", Amount: -20000, Category: "Uncategorized"},
	}

	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "YNAB:-20000:2024-03-15:1", result.Transactions[0].ImportID)
	assert.Equal(t, "YNAB:-20000:2024-03-15:2", result.Transactions[1].ImportID)
}

func TestBuildTransactionsUnknownCategory(t *testing.T) {
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Memo: "Echo Dot", Amount: -45000, Category: "No Such Category"},
	}
	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 1)
	// Unknown names leave the category unset rather than guessing.
	assert.Empty(t, result.Transactions[0].CategoryID)
}

func TestBuildTransactionsUnknownCategoriesShareNullKey(t *testing.T) {
	// Two unresolvable category names aggregate under one unset key,
	// so no splits are produced.
	rows := []models.CanonicalRow{
		{Date: "2024-03-15", Memo: "Thing A", Amount: -10000, Category: "Mystery One", OrderID: "111-222"},
		{Date: "2024-03-15", Memo: "Thing B", Amount: -5000, Category: "Mystery Two", OrderID: "111-222"},
	}
	result := BuildTransactions(rows, BuildOptions{AccountID: "acct-1", CategoryIDs: testCategoryIDs})
	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, int64(-15000), tx.Amount)
	assert.Empty(t, tx.CategoryID)
	assert.Empty(t, tx.Subtransactions)
}

func TestCategoryIDMap(t *testing.T) {
	m := CategoryIDMap([]ynab.Category{
		{ID: "c1", Name: "Groceries"},
		{ID: "c2", Name: "Dining Out"},
	})
	assert.Equal(t, "c1", m["groceries"])
	assert.Equal(t, "c2", m["dining out"])
}
