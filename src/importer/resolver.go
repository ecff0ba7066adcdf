package importer

import (
	"context"
	"log"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"amazon-ynab-server/src/ai"
	"amazon-ynab-server/src/models"
)

const (
	// aiBatchSize bounds request size toward the categorization service.
	aiBatchSize = 25
	// aiMemoLimit truncates memos sent to the service.
	aiMemoLimit = 300
	// mappingPrefixLen is how much of a corrected memo becomes the
	// learned-mapping key.
	mappingPrefixLen = 60
)

// Resolver maps memos to category names. Resolution order: learned
// mappings, then keyword rules, then (when enabled) the AI service,
// whose answers are fuzzy-matched against the authoritative category
// list. Anything unresolved lands on "Uncategorized".
//
// Mappings and rules are read once at construction; the resolver does
// not observe later writes.
type Resolver struct {
	mappings []models.LearnedMapping
	rules    []models.CategoryRule
	aiClient *ai.Client
}

func NewResolver(mappings []models.LearnedMapping, rules []models.CategoryRule, aiClient *ai.Client) *Resolver {
	return &Resolver{
		mappings: mappings,
		rules:    rules,
		aiClient: aiClient,
	}
}

// ResolveLocal runs the deterministic tiers only. Returns "" when
// neither a learned mapping nor a rule matches.
func (r *Resolver) ResolveLocal(memo string) string {
	lower := strings.ToLower(memo)
	for _, m := range r.mappings {
		if m.MemoPrefix != "" && strings.Contains(lower, m.MemoPrefix) {
			return m.Category
		}
	}
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return ""
}

// Resolve is ResolveLocal with the default applied.
func (r *Resolver) Resolve(memo string) string {
	if cat := r.ResolveLocal(memo); cat != "" {
		return cat
	}
	return DefaultCategory
}

// ResolveAll categorizes every row in place. Rows already carrying a
// category (e.g. from a reviewed canonical CSV) are left alone. Rows the
// local tiers can't place go to the AI service in batches; a failed
// batch falls back to the default without affecting other batches.
func (r *Resolver) ResolveAll(ctx context.Context, rows []models.CanonicalRow, categoryNames []string) {
	var unresolved []int
	for i := range rows {
		if rows[i].Category != "" && rows[i].Category != DefaultCategory {
			continue
		}
		if cat := r.ResolveLocal(rows[i].Memo); cat != "" {
			rows[i].Category = cat
			continue
		}
		rows[i].Category = DefaultCategory
		unresolved = append(unresolved, i)
	}

	if !r.aiClient.Enabled() || len(unresolved) == 0 {
		return
	}

	for start := 0; start < len(unresolved); start += aiBatchSize {
		end := start + aiBatchSize
		if end > len(unresolved) {
			end = len(unresolved)
		}
		batch := unresolved[start:end]

		items := make([]ai.BatchItem, 0, len(batch))
		for _, idx := range batch {
			items = append(items, ai.BatchItem{
				Index: idx,
				Memo:  truncateRunes(rows[idx].Memo, aiMemoLimit),
			})
		}

		answers, err := r.aiClient.CategorizeBatch(ctx, items, categoryNames)
		if err != nil {
			// Batch failures are isolated: these rows keep their
			// rule-based fallback, later batches still run.
			log.Printf("ERROR: AI categorization batch failed, falling back to rules for %d item(s): %v", len(batch), err)
			continue
		}

		for _, idx := range batch {
			answer, ok := answers[strconv.Itoa(idx)]
			if !ok {
				continue
			}
			if cat := FuzzyResolveCategory(answer, categoryNames); cat != "" {
				rows[idx].Category = cat
			}
		}
	}
}

// FuzzyResolveCategory maps an AI-provided category name onto the
// authoritative list: exact match, then match after stripping emoji and
// normalizing whitespace/case, then bidirectional substring containment
// of the normalized forms. Returns "" when nothing matches, so a raw
// unmatched AI string never leaks into the ledger.
func FuzzyResolveCategory(answer string, categoryNames []string) string {
	for _, name := range categoryNames {
		if answer == name {
			return name
		}
	}

	normAnswer := normalizeCategoryName(answer)
	if normAnswer == "" {
		return ""
	}
	for _, name := range categoryNames {
		if normalizeCategoryName(name) == normAnswer {
			return name
		}
	}
	for _, name := range categoryNames {
		normName := normalizeCategoryName(name)
		if normName == "" {
			continue
		}
		if strings.Contains(normName, normAnswer) || strings.Contains(normAnswer, normName) {
			return name
		}
	}
	return ""
}

// Case folding rather than ToLower so names compare caselessly beyond
// ASCII.
func normalizeCategoryName(s string) string {
	return strings.TrimSpace(cases.Fold().String(stripEmoji(s)))
}

// stripEmoji drops pictographic code points plus the joiners and
// variation selectors that ride along with them. YNAB users decorate
// category names with emoji; the AI rarely echoes them back intact.
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmojiRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // emoji, symbols, pictographs
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0x200D || r == 0xFE0E || r == 0xFE0F: // ZWJ, variation selectors
		return true
	case r >= 0x2190 && r <= 0x21FF && unicode.IsSymbol(r): // arrows
		return true
	}
	return false
}

// NormalizeMappingKey derives the learned-mapping key from a corrected
// memo: lowercased, trimmed, first 60 chars.
func NormalizeMappingKey(memo string) string {
	return truncateRunes(strings.ToLower(strings.TrimSpace(memo)), mappingPrefixLen)
}
