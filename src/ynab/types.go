package ynab

// Wire types for the YNAB v1 API, narrowed to the fields this server
// reads or writes. Amounts are milliunits (minor units): -45000 is a
// $45.00 outflow. Dates are calendar dates, YYYY-MM-DD, no time part.
// https://api.ynab.com/v1

type Budget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Closed  bool   `json:"closed"`
	Deleted bool   `json:"deleted"`
}

type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Hidden  bool   `json:"hidden"`
	Deleted bool   `json:"deleted"`
}

type Transaction struct {
	ID              string           `json:"id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeName       string           `json:"payee_name"`
	CategoryID      string           `json:"category_id,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	Subtransactions []SubTransaction `json:"subtransactions,omitempty"`
}

type SubTransaction struct {
	Amount     int64  `json:"amount"`
	CategoryID string `json:"category_id,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

// NewTransaction is the create payload. ImportID is the idempotency key:
// YNAB rejects a second transaction with the same import_id on the same
// account rather than creating a duplicate.
type NewTransaction struct {
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeName       string           `json:"payee_name,omitempty"`
	Memo            string           `json:"memo,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Cleared         string           `json:"cleared,omitempty"`
	Approved        bool             `json:"approved"`
	ImportID        string           `json:"import_id,omitempty"`
	Subtransactions []SubTransaction `json:"subtransactions,omitempty"`
}

// UpdateTransaction is the PATCH payload for batch category updates.
type UpdateTransaction struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
}

// SaveResult is what create/update calls return: the transactions the
// server actually wrote plus any import ids it rejected as duplicates.
type SaveResult struct {
	Transactions       []Transaction `json:"transactions"`
	DuplicateImportIDs []string      `json:"duplicate_import_ids"`
}

type budgetsResponse struct {
	Data struct {
		Budgets []Budget `json:"budgets"`
	} `json:"data"`
}

type accountsResponse struct {
	Data struct {
		Accounts []Account `json:"accounts"`
	} `json:"data"`
}

type categoriesResponse struct {
	Data struct {
		CategoryGroups []CategoryGroup `json:"category_groups"`
	} `json:"data"`
}

type transactionsResponse struct {
	Data struct {
		Transactions []Transaction `json:"transactions"`
	} `json:"data"`
}

type saveResponse struct {
	Data SaveResult `json:"data"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}
