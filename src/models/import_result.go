package models

// ImportResult reports what one import pass did. Created and
// ServerDuplicates come back from YNAB; the skip counts are computed
// locally before submission.
type ImportResult struct {
	RunID             string `json:"run_id"`
	RowsParsed        int    `json:"rows_parsed"`
	Created           int    `json:"created"`
	SkippedDuplicates int    `json:"skipped_duplicates"`
	SkippedZeroAmount int    `json:"skipped_zero_amount"`
	ServerDuplicates  int    `json:"server_duplicates"`
}
