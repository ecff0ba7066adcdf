package models

// ScrapedOrder is one order as extracted from an Amazon order-history page
// by the browser extension. Totals and prices are in currency units, not
// milliunits, since scraped values can carry rounding noise.
type ScrapedOrder struct {
	OrderID string      `json:"order_id"`
	Date    string      `json:"date"` // YYYY-MM-DD
	Total   float64     `json:"total"`
	Items   []OrderItem `json:"items"`
}

type OrderItem struct {
	Title string   `json:"title"`
	Price *float64 `json:"price,omitempty"`
}
