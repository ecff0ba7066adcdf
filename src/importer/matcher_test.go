package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
)

func price(v float64) *float64 { return &v }

func TestMatchOrdersHighConfidence(t *testing.T) {
	orders := []models.ScrapedOrder{
		{OrderID: "111-222", Date: "2024-03-15", Total: 45.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	m := result.Matched[0]
	assert.Equal(t, "111-222", m.Order.OrderID)
	assert.Equal(t, "t1", m.Transaction.ID)
	assert.Equal(t, ConfidenceHigh, m.Confidence)
	assert.True(t, m.Approved)
	assert.Empty(t, result.UnmatchedOrders)
	assert.Empty(t, result.UnmatchedTransactions)
}

func TestMatchOrdersMediumConfidence(t *testing.T) {
	// Order placed two days before the charge posted.
	orders := []models.ScrapedOrder{
		{OrderID: "111-222", Date: "2024-03-13", Total: 45.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, ConfidenceMedium, result.Matched[0].Confidence)
	assert.True(t, result.Matched[0].Approved)
}

func TestMatchOrdersAmbiguous(t *testing.T) {
	// Two $20 orders the same day: whichever wins, the match needs review.
	orders := []models.ScrapedOrder{
		{OrderID: "111-AAA", Date: "2024-03-15", Total: 20.00},
		{OrderID: "111-BBB", Date: "2024-03-15", Total: 20.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -20000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	m := result.Matched[0]
	assert.Equal(t, ConfidenceAmbiguous, m.Confidence)
	assert.False(t, m.Approved)
	// Ties resolve to the first order by input order.
	assert.Equal(t, "111-AAA", m.Order.OrderID)
	require.Len(t, result.UnmatchedOrders, 1)
	assert.Equal(t, "111-BBB", result.UnmatchedOrders[0].OrderID)
}

func TestMatchOrdersPrefersCloserDate(t *testing.T) {
	orders := []models.ScrapedOrder{
		{OrderID: "far", Date: "2024-03-13", Total: 45.00},
		{OrderID: "near", Date: "2024-03-15", Total: 45.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "near", result.Matched[0].Order.OrderID)
}

func TestMatchOrdersTolerances(t *testing.T) {
	orders := []models.ScrapedOrder{
		{OrderID: "amount-off", Date: "2024-03-15", Total: 45.10},
		{OrderID: "date-off", Date: "2024-03-12", Total: 20.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
		{ID: "t2", Date: "2024-03-15", Amount: -20000},
	}

	result := MatchOrders(orders, transactions)
	// 45.10 vs 45.00 exceeds the 0.05 amount tolerance; three days
	// exceeds the date window.
	assert.Empty(t, result.Matched)
	assert.Len(t, result.UnmatchedOrders, 2)
	assert.Len(t, result.UnmatchedTransactions, 2)
}

func TestMatchOrdersDateToleranceBoundary(t *testing.T) {
	txDate, err := time.Parse("2006-01-02", "2024-03-15")
	require.NoError(t, err)
	inside := txDate.AddDate(0, 0, -OrderDateTolerance).Format("2006-01-02")
	outside := txDate.AddDate(0, 0, -(OrderDateTolerance + 1)).Format("2006-01-02")

	orders := []models.ScrapedOrder{
		{OrderID: "inside", Date: inside, Total: 45.00},
		{OrderID: "outside", Date: outside, Total: 20.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
		{ID: "t2", Date: "2024-03-15", Amount: -20000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "inside", result.Matched[0].Order.OrderID)
	require.Len(t, result.UnmatchedOrders, 1)
	assert.Equal(t, "outside", result.UnmatchedOrders[0].OrderID)
}

func TestMatchOrdersWithinAmountTolerance(t *testing.T) {
	orders := []models.ScrapedOrder{
		{OrderID: "111-222", Date: "2024-03-15", Total: 45.05},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
}

func TestMatchOrdersOneToOne(t *testing.T) {
	// Two identical charges, one order: the order is consumed once.
	orders := []models.ScrapedOrder{
		{OrderID: "111-222", Date: "2024-03-15", Total: 45.00},
	}
	transactions := []ynab.Transaction{
		{ID: "t1", Date: "2024-03-15", Amount: -45000},
		{ID: "t2", Date: "2024-03-15", Amount: -45000},
	}

	result := MatchOrders(orders, transactions)
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "t1", result.Matched[0].Transaction.ID)
	require.Len(t, result.UnmatchedTransactions, 1)
	assert.Equal(t, "t2", result.UnmatchedTransactions[0].ID)
}

func TestRepresentativeMemo(t *testing.T) {
	order := models.ScrapedOrder{
		OrderID: "111-222",
		Items: []models.OrderItem{
			{Title: "USB Cable", Price: price(12.99)},
			{Title: "Laptop Stand", Price: price(89.99)},
			{Title: "Mystery Item"},
		},
	}
	assert.Equal(t, "Laptop Stand", RepresentativeMemo(order))

	// Ties go to the first item seen.
	tied := models.ScrapedOrder{
		Items: []models.OrderItem{
			{Title: "First", Price: price(10)},
			{Title: "Second", Price: price(10)},
		},
	}
	assert.Equal(t, "First", RepresentativeMemo(tied))

	empty := models.ScrapedOrder{OrderID: "111-333"}
	assert.Equal(t, "Amazon order 111-333", RepresentativeMemo(empty))
}
