package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazon-ynab-server/src/ynab"
)

func TestDuplicateIndex(t *testing.T) {
	existing := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
		{ID: "t2", Date: "2024-03-15", Amount: -20000},
	}
	idx := NewDuplicateIndex(existing, 5)

	// Exact amount, same day.
	assert.True(t, idx.IsDuplicate("2024-03-15", -45000))
	// Window is inclusive: exactly five days out still counts.
	assert.True(t, idx.IsDuplicate("2024-03-20", -45000))
	assert.True(t, idx.IsDuplicate("2024-03-10", -45000))
	// One day past the window does not.
	assert.False(t, idx.IsDuplicate("2024-03-21", -45000))
	// Amounts never fuzzy-match: a cent off is a different transaction.
	assert.False(t, idx.IsDuplicate("2024-03-15", -45010))
	assert.False(t, idx.IsDuplicate("2024-03-15", 45000))
}

func TestDuplicateIndexDefaultWindow(t *testing.T) {
	existing := []ynab.Transaction{
		{Date: "2024-03-15", Amount: -45000},
	}
	idx := NewDuplicateIndex(existing, 0)
	assert.True(t, idx.IsDuplicate("2024-03-20", -45000))
	assert.False(t, idx.IsDuplicate("2024-03-21", -45000))
}

func TestDuplicateIndexSkipsBadDates(t *testing.T) {
	existing := []ynab.Transaction{
		{Date: "garbage", Amount: -45000},
	}
	idx := NewDuplicateIndex(existing, 5)
	assert.False(t, idx.IsDuplicate("2024-03-15", -45000))
	assert.False(t, idx.IsDuplicate("garbage", -45000))
}

func TestFetchWindowStart(t *testing.T) {
	start, ok := FetchWindowStart("2024-03-15", 5)
	require.True(t, ok)
	assert.Equal(t, "2024-03-10", start)

	_, ok = FetchWindowStart("not a date", 5)
	assert.False(t, ok)
}
