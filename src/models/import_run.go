package models

import "time"

type ImportRun struct {
	ID                string    `json:"id"`
	UserID            int       `json:"user_id"`
	Filename          string    `json:"filename"`
	RowsParsed        int       `json:"rows_parsed"`
	Created           int       `json:"created"`
	SkippedDuplicates int       `json:"skipped_duplicates"`
	SkippedZeroAmount int       `json:"skipped_zero_amount"`
	ServerDuplicates  int       `json:"server_duplicates"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}
