// Package importer holds the import pipeline core: CSV/order
// normalization, category resolution, order matching, duplicate
// detection, and transaction building.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"amazon-ynab-server/src/models"
)

const (
	DefaultPayee    = "Amazon.ca"
	DefaultCategory = "Uncategorized"

	maxMemoLen       = 500
	dedupeMemoPrefix = 100
)

// Column candidates per field, in priority order. Exact (case-insensitive)
// matches win over stripped-substring matches.
var (
	dateColumns       = []string{"order.date", "order date", "order_date", "date", "order placed", "charged on"}
	amountColumns     = []string{"order.total", "order total", "order_total", "item total", "item.total", "total", "amount", "price"}
	memoColumns       = []string{"item.title", "item title", "item_title", "title", "product", "description", "item", "memo", "order.items"}
	orderIDColumns    = []string{"order.id", "order id", "order_id", "order number", "order #"}
	orderTotalColumns = []string{"order.total", "order total", "order_total"}
)

var refundWords = []string{"return", "refund", "reimbursement"}

var (
	isoDatePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	slashDatePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
)

var ErrMissingColumns = errors.New("could not find date and amount columns")

// FindColumn locates the best header for a field: first an exact
// case-insensitive match walking candidates in priority order, then a
// substring match with whitespace and dots stripped from both sides.
// Returns -1 when nothing matches.
func FindColumn(headers []string, candidates []string) int {
	for _, c := range candidates {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), c) {
				return i
			}
		}
	}
	for _, c := range candidates {
		stripped := stripHeader(c)
		for i, h := range headers {
			if strings.Contains(stripHeader(h), stripped) {
				return i
			}
		}
	}
	return -1
}

func stripHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, ".", "")
}

// ParseDate accepts ISO, slash-delimited, and long month-name dates and
// returns the canonical YYYY-MM-DD form.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	layouts := []string{
		"2006-01-02",
		"1/2/2006",
		"2/1/2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
	}
	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2])), true
	}
	return "", false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseAmount strips currency decoration and parses the value in
// currency units.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, junk := range []string{",", "$", "CAD"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Milliunits converts a currency value to YNAB minor units.
func Milliunits(v float64) int64 {
	return int64(math.Round(v * 1000))
}

func isRefundMemo(memo string) bool {
	lower := strings.ToLower(memo)
	for _, w := range refundWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// normalizeSign applies the outflow convention: every amount is forced
// negative unless the memo reads like a refund and the value is positive.
func normalizeSign(amount float64, memo string) int64 {
	if amount > 0 && isRefundMemo(memo) {
		return Milliunits(amount)
	}
	return -Milliunits(math.Abs(amount))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ParseAmazonCSV normalizes a raw Amazon order-history export. Column
// names are detected from the header; rows with unparseable dates or
// amounts are dropped; duplicate lines within the file are collapsed.
func ParseAmazonCSV(r io.Reader) ([]models.CanonicalRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(headers) > 0 {
		// Strip a UTF-8 BOM some exports carry.
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	dateCol := FindColumn(headers, dateColumns)
	amountCol := FindColumn(headers, amountColumns)
	memoCol := FindColumn(headers, memoColumns)
	orderIDCol := FindColumn(headers, orderIDColumns)
	orderTotalCol := FindColumn(headers, orderTotalColumns)

	if dateCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("%w; available: %v", ErrMissingColumns, headers)
	}

	var rows []models.CanonicalRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		date, ok := ParseDate(field(record, dateCol))
		if !ok {
			continue
		}
		amount, ok := ParseAmount(field(record, amountCol))
		if !ok {
			continue
		}

		memo := truncateRunes(strings.TrimSpace(field(record, memoCol)), maxMemoLen)
		if memo == "" {
			memo = "Order " + date
		}

		rows = append(rows, models.CanonicalRow{
			Date:     date,
			Payee:    DefaultPayee,
			Memo:     memo,
			Amount:   normalizeSign(amount, memo),
			Category: DefaultCategory,
			OrderID:  deriveOrderID(record, date, orderIDCol, orderTotalCol),
		})
	}

	return dedupeRows(rows, false), nil
}

// deriveOrderID prefers an explicit order-id column. Without one, a
// synthetic id from (date, order total) still lets multiple item lines
// of one order group together downstream.
func deriveOrderID(record []string, date string, orderIDCol, orderTotalCol int) string {
	if orderIDCol >= 0 {
		if id := strings.TrimSpace(field(record, orderIDCol)); id != "" {
			return id
		}
	}
	if orderTotalCol >= 0 {
		if total := strings.TrimSpace(field(record, orderTotalCol)); total != "" {
			return date + "|" + total
		}
	}
	return ""
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// dedupeRows collapses rows repeated within a single source file. The
// full pass keys on (date, amount, memo prefix); the light pass also
// keys on order id so same-priced lines in one order survive.
func dedupeRows(rows []models.CanonicalRow, light bool) []models.CanonicalRow {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := fmt.Sprintf("%s|%d|%s", row.Date, row.Amount, truncateRunes(row.Memo, dedupeMemoPrefix))
		if light {
			key += "|" + row.OrderID
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// ParseCanonicalCSV re-imports this system's own interchange format
// (Date, Payee, Memo, Amount, Category, OrderId). Sign normalization is
// re-applied; the dedupe pass is light when the file carries order ids.
func ParseCanonicalCSV(r io.Reader) ([]models.CanonicalRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	dateCol := FindColumn(headers, []string{"date"})
	payeeCol := FindColumn(headers, []string{"payee"})
	memoCol := FindColumn(headers, []string{"memo"})
	amountCol := FindColumn(headers, []string{"amount"})
	categoryCol := FindColumn(headers, []string{"category"})
	orderIDCol := FindColumn(headers, []string{"orderid", "order id"})

	if dateCol < 0 || amountCol < 0 {
		return nil, ErrMissingColumns
	}

	var rows []models.CanonicalRow
	hasOrderIDs := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		date, ok := ParseDate(field(record, dateCol))
		if !ok {
			continue
		}
		amount, ok := ParseAmount(field(record, amountCol))
		if !ok {
			continue
		}

		memo := truncateRunes(strings.TrimSpace(field(record, memoCol)), maxMemoLen)
		payee := strings.TrimSpace(field(record, payeeCol))
		if payee == "" {
			payee = DefaultPayee
		}
		category := strings.TrimSpace(field(record, categoryCol))
		if category == "" {
			category = DefaultCategory
		}
		orderID := strings.TrimSpace(field(record, orderIDCol))
		if orderID != "" {
			hasOrderIDs = true
		}

		rows = append(rows, models.CanonicalRow{
			Date:     date,
			Payee:    payee,
			Memo:     memo,
			Amount:   normalizeSign(amount, memo),
			Category: category,
			OrderID:  orderID,
		})
	}

	return dedupeRows(rows, hasOrderIDs), nil
}

// WriteCanonicalCSV writes rows in the interchange format consumed by
// ParseCanonicalCSV.
func WriteCanonicalCSV(w io.Writer, rows []models.CanonicalRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Date", "Payee", "Memo", "Amount", "Category", "OrderId"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			row.Payee,
			row.Memo,
			FormatMilliunits(row.Amount),
			row.Category,
			row.OrderID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatMilliunits renders a milliunit amount as a decimal currency
// string, e.g. -45000 → "-45.00".
func FormatMilliunits(m int64) string {
	return strconv.FormatFloat(float64(m)/1000, 'f', 2, 64)
}
