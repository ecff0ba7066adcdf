package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amazon-ynab-server/src/ai"
	"amazon-ynab-server/src/models"
)

func TestResolveLocal(t *testing.T) {
	mappings := []models.LearnedMapping{
		{MemoPrefix: "echo dot", Category: "Electronics"},
	}
	rules := []models.CategoryRule{
		{Keywords: []string{"lego", "toy"}, Category: "Kids Supplies"},
		{Keywords: []string{"coffee"}, Category: "Groceries"},
	}
	r := NewResolver(mappings, rules, nil)

	// Learned mappings beat rules.
	assert.Equal(t, "Electronics", r.ResolveLocal("Echo Dot (5th Gen) toy edition"))
	assert.Equal(t, "Kids Supplies", r.ResolveLocal("LEGO Classic Brick Box"))
	assert.Equal(t, "Groceries", r.ResolveLocal("Whole bean coffee 1kg"))
	assert.Equal(t, "", r.ResolveLocal("HDMI cable"))

	assert.Equal(t, DefaultCategory, r.Resolve("HDMI cable"))
}

func TestResolveAllLocalOnly(t *testing.T) {
	rules := []models.CategoryRule{
		{Keywords: []string{"toy"}, Category: "Kids Supplies"},
	}
	r := NewResolver(nil, rules, nil)

	rows := []models.CanonicalRow{
		{Memo: "Wooden toy train", Category: DefaultCategory},
		{Memo: "HDMI cable", Category: DefaultCategory},
		{Memo: "Echo Dot", Category: "Electronics"}, // pre-set survives
	}
	r.ResolveAll(context.Background(), rows, []string{"Kids Supplies", "Electronics"})

	assert.Equal(t, "Kids Supplies", rows[0].Category)
	assert.Equal(t, DefaultCategory, rows[1].Category)
	assert.Equal(t, "Electronics", rows[2].Category)
}

func TestResolveAllWithAI(t *testing.T) {
	var gotCategories []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Items      []ai.BatchItem `json:"items"`
			Categories []string       `json:"categories"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		gotCategories = body.Categories

		answers := make(map[string]string, len(body.Items))
		for _, item := range body.Items {
			answers[strconv.Itoa(item.Index)] = "Electronics"
		}
		require.NoError(t, json.NewEncoder(w).Encode(answers))
	}))
	defer server.Close()

	r := NewResolver(nil, nil, ai.NewClient(server.URL, ""))
	rows := []models.CanonicalRow{
		{Memo: "HDMI cable"},
		{Memo: "USB hub"},
	}
	categories := []string{"Electronics", "Groceries"}
	r.ResolveAll(context.Background(), rows, categories)

	assert.Equal(t, categories, gotCategories)
	assert.Equal(t, "Electronics", rows[0].Category)
	assert.Equal(t, "Electronics", rows[1].Category)
}

func TestResolveAllAIFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	r := NewResolver(nil, nil, ai.NewClient(server.URL, ""))
	rows := []models.CanonicalRow{{Memo: "HDMI cable"}}
	r.ResolveAll(context.Background(), rows, []string{"Electronics"})

	assert.Equal(t, DefaultCategory, rows[0].Category)
}

func TestFuzzyResolveCategory(t *testing.T) {
	categories := []string{"🛒 Groceries", "Kids Supplies", "Dining Out", "Electronics"}

	tests := []struct {
		answer string
		want   string
	}{
		{"Kids Supplies", "Kids Supplies"},     // exact
		{"🛒 Groceries", "🛒 Groceries"},         // exact with emoji
		{"groceries", "🛒 Groceries"},           // emoji-stripped normalized
		{"KIDS SUPPLIES", "Kids Supplies"},     // case
		{"Dining", "Dining Out"},               // answer contained in name
		{"Electronics & Computers", "Electronics"}, // name contained in answer
		{"Travel", ""},                         // no match
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FuzzyResolveCategory(tt.answer, categories), "answer %q", tt.answer)
	}
}

func TestFuzzyResolveCategoryNeverInventsNames(t *testing.T) {
	categories := []string{"Groceries", "Electronics"}
	for _, answer := range []string{"Groceries", "electronics", "Grocer", "Household", "🛒"} {
		got := FuzzyResolveCategory(answer, categories)
		if got != "" {
			assert.Contains(t, categories, got, "answer %q", answer)
		}
	}
}

func TestNormalizeMappingKey(t *testing.T) {
	assert.Equal(t, "echo dot (5th gen)", NormalizeMappingKey("  Echo Dot (5th Gen)  "))

	long := "Some Extremely Long Product Title That Goes On And On Well Past Sixty Characters"
	key := NormalizeMappingKey(long)
	assert.Len(t, []rune(key), 60)
}
