package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.ynab.com/v1"

// transactionPageSize governs pagination: while a since-date fetch comes
// back with at least this many rows, we assume there may be more and
// fetch again with the since date advanced past the newest row.
const transactionPageSize = 1000

// APIError is YNAB's structured error payload, surfaced verbatim so
// callers can report the service-provided detail.
type APIError struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ynab: %s (%s): %s", e.Name, e.ID, e.Detail)
}

type Client struct {
	baseURL     string
	accessToken string
	budgetID    string
	accountID   string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken, budgetID, accountID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		budgetID:    budgetID,
		accountID:   accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil && errResp.Error.ID != "" {
			return &errResp.Error
		}
		return fmt.Errorf("ynab: status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) GetBudgets(ctx context.Context) ([]Budget, error) {
	var resp budgetsResponse
	if err := c.do(ctx, http.MethodGet, "/budgets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Budgets, nil
}

func (c *Client) GetAccounts(ctx context.Context, budgetID string) ([]Account, error) {
	var resp accountsResponse
	path := fmt.Sprintf("/budgets/%s/accounts", budgetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(resp.Data.Accounts))
	for _, a := range resp.Data.Accounts {
		if a.Deleted {
			continue
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// GetCategories flattens the grouped category list, dropping deleted and
// hidden groups and categories.
func (c *Client) GetCategories(ctx context.Context) ([]Category, error) {
	var resp categoriesResponse
	path := fmt.Sprintf("/budgets/%s/categories", c.budgetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	var categories []Category
	for _, group := range resp.Data.CategoryGroups {
		if group.Hidden || group.Deleted {
			continue
		}
		for _, cat := range group.Categories {
			if cat.Hidden || cat.Deleted {
				continue
			}
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

// GetTransactionsSince fetches account transactions dated sinceDate or
// later. Full pages trigger another fetch with since_date advanced one
// day past the newest returned transaction.
func (c *Client) GetTransactionsSince(ctx context.Context, sinceDate string) ([]Transaction, error) {
	var all []Transaction
	since := sinceDate
	for {
		var resp transactionsResponse
		path := fmt.Sprintf("/budgets/%s/accounts/%s/transactions?since_date=%s", c.budgetID, c.accountID, since)
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		page := resp.Data.Transactions
		all = append(all, page...)
		if len(page) < transactionPageSize {
			return all, nil
		}
		latest := page[0].Date
		for _, tx := range page {
			if tx.Date > latest {
				latest = tx.Date
			}
		}
		next, err := time.Parse("2006-01-02", latest)
		if err != nil {
			return all, nil
		}
		since = next.AddDate(0, 0, 1).Format("2006-01-02")
	}
}

// CreateTransactions posts the whole batch in one request.
func (c *Client) CreateTransactions(ctx context.Context, transactions []NewTransaction) (*SaveResult, error) {
	payload := struct {
		Transactions []NewTransaction `json:"transactions"`
	}{Transactions: transactions}

	var resp saveResponse
	path := fmt.Sprintf("/budgets/%s/transactions", c.budgetID)
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateTransactions patches category assignments on existing
// transactions in one batch request.
func (c *Client) UpdateTransactions(ctx context.Context, updates []UpdateTransaction) (*SaveResult, error) {
	payload := struct {
		Transactions []UpdateTransaction `json:"transactions"`
	}{Transactions: updates}

	var resp saveResponse
	path := fmt.Sprintf("/budgets/%s/transactions", c.budgetID)
	if err := c.do(ctx, http.MethodPatch, path, payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
