package models

// CanonicalRow is one normalized line of Amazon order history, ready for
// categorization and import. Amount is in YNAB milliunits; negative is an
// outflow, positive an inflow (refund).
type CanonicalRow struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Payee    string `json:"payee"`
	Memo     string `json:"memo"`
	Amount   int64  `json:"amount"`
	Category string `json:"category"`
	OrderID  string `json:"order_id,omitempty"`
}
