package importer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"amazon-ynab-server/src/models"
	"amazon-ynab-server/src/ynab"
)

const (
	// orderAmountTolerance absorbs rounding noise in scraped totals.
	// Ledger amounts are exact; scraped ones are not.
	orderAmountTolerance = 0.05
	// OrderDateTolerance is how far apart an order date and its charge
	// date may land, in days. Callers fetching ledger transactions for a
	// matching pass widen their window by the same amount.
	OrderDateTolerance = 2
)

// Match confidence levels.
const (
	ConfidenceHigh      = "high"
	ConfidenceMedium    = "medium"
	ConfidenceAmbiguous = "ambiguous"
)

// MatchedTransaction pairs a scraped order with an existing ledger
// transaction. Approved defaults true for high/medium confidence and
// false for ambiguous matches; the review UI may override either way.
type MatchedTransaction struct {
	Order               models.ScrapedOrder `json:"order"`
	Transaction         ynab.Transaction    `json:"transaction"`
	SuggestedCategory   string              `json:"suggested_category,omitempty"`
	SuggestedCategoryID string              `json:"suggested_category_id,omitempty"`
	Confidence          string              `json:"confidence"`
	Approved            bool                `json:"approved"`
}

// MatchResult is the full outcome of one matching pass. Unmatched
// entries are always reported, never dropped.
type MatchResult struct {
	Matched               []MatchedTransaction `json:"matched"`
	UnmatchedOrders       []models.ScrapedOrder `json:"unmatched_orders"`
	UnmatchedTransactions []ynab.Transaction    `json:"unmatched_transactions"`
}

type candidate struct {
	orderIdx int
	dateDist int
}

// MatchOrders pairs scraped orders against ledger transactions, greedily
// and one-to-one. Transactions are walked in input order; for each, all
// unused orders within amount and date tolerance are collected, sorted by
// date distance (ties keep input order), and the closest wins.
func MatchOrders(orders []models.ScrapedOrder, transactions []ynab.Transaction) MatchResult {
	result := MatchResult{}
	usedOrders := make(map[int]bool, len(orders))

	orderDates := make([]time.Time, len(orders))
	orderDateOK := make([]bool, len(orders))
	for i, o := range orders {
		orderDates[i], orderDateOK[i] = parseCalendarDate(o.Date)
	}

	for _, tx := range transactions {
		txDate, ok := parseCalendarDate(tx.Date)
		if !ok {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, tx)
			continue
		}
		txAmount := math.Abs(float64(tx.Amount)) / 1000

		var candidates []candidate
		for i, o := range orders {
			if usedOrders[i] || !orderDateOK[i] {
				continue
			}
			if math.Abs(o.Total-txAmount) > orderAmountTolerance+1e-9 {
				continue
			}
			dist := dayDistance(txDate, orderDates[i])
			if dist > OrderDateTolerance {
				continue
			}
			candidates = append(candidates, candidate{orderIdx: i, dateDist: dist})
		}

		if len(candidates) == 0 {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, tx)
			continue
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].dateDist < candidates[b].dateDist
		})

		best := candidates[0]
		usedOrders[best.orderIdx] = true

		confidence := ConfidenceAmbiguous
		if len(candidates) == 1 {
			if best.dateDist == 0 {
				confidence = ConfidenceHigh
			} else {
				confidence = ConfidenceMedium
			}
		}

		result.Matched = append(result.Matched, MatchedTransaction{
			Order:       orders[best.orderIdx],
			Transaction: tx,
			Confidence:  confidence,
			Approved:    confidence != ConfidenceAmbiguous,
		})
	}

	for i, o := range orders {
		if !usedOrders[i] {
			result.UnmatchedOrders = append(result.UnmatchedOrders, o)
		}
	}
	return result
}

// RepresentativeMemo picks the memo used to categorize a matched order:
// the title of its highest-priced item, first-seen winning ties. Orders
// with no items get a synthesized placeholder.
func RepresentativeMemo(order models.ScrapedOrder) string {
	if len(order.Items) == 0 {
		return fmt.Sprintf("Amazon order %s", order.OrderID)
	}
	best := 0
	bestPrice := itemPrice(order.Items[0])
	for i, item := range order.Items[1:] {
		if p := itemPrice(item); p > bestPrice {
			best = i + 1
			bestPrice = p
		}
	}
	return order.Items[best].Title
}

func itemPrice(item models.OrderItem) float64 {
	if item.Price == nil {
		return 0
	}
	return *item.Price
}

func parseCalendarDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dayDistance(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
