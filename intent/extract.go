package intent

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hubgoodfood/freshchat/catalog"
)

// chatterPatterns strip availability/price/buy phrasing around the target
// entity. Anchored patterns come first: removing "卖不卖" as a prefix (not
// a bare substring) is what keeps "卖不卖草莓" from degrading to "不草莓".
var chatterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^卖不卖\s*`),
	regexp.MustCompile(`^有没有\s*`),
	regexp.MustCompile(`^有不有\s*`),
	regexp.MustCompile(`^卖不\s*`),
	regexp.MustCompile(`^有不\s*`),
	regexp.MustCompile(`^有\s*`),
	regexp.MustCompile(`^我要\s*`),
	regexp.MustCompile(`^你们\s*`),
	regexp.MustCompile(`\s*卖不卖[\?？!！。]*$`),
	regexp.MustCompile(`\s*有没有[\?？!！。]*$`),
	regexp.MustCompile(`\s*有不有[\?？!！。]*$`),
	regexp.MustCompile(`\s*卖不[\?？!！。]*$`),
	regexp.MustCompile(`\s*有不[\?？!！。]*$`),
	regexp.MustCompile(`\s*卖吗[\?？!！。]*$`),
	regexp.MustCompile(`\s*有吗[\?？!！。]*$`),
	regexp.MustCompile(`\s*有[\?？!！。]*$`),
	regexp.MustCompile(`\s*吗[\?？!！。]*$`),
	regexp.MustCompile(`\s*呢[\?？!！。]*$`),
	regexp.MustCompile(`\s*啊[\?？!！。]*$`),
	regexp.MustCompile(`\s*多少钱\s*`),
	regexp.MustCompile(`\s*什么价\s*`),
	regexp.MustCompile(`\s*价格\s*`),
	regexp.MustCompile(`\s*怎么卖\s*`),
	regexp.MustCompile(`\s*一斤多少\s*`),
	regexp.MustCompile(`\s*售价\s*`),
}

// availabilitySuffixes are trimmed before the reverse catalog lookup.
var availabilitySuffixes = []string{"有？", "有?", "有吗", "卖吗", "卖不卖", "有没有"}

// ExtractProductQuery pulls the most likely product entity out of a
// colloquial availability/price utterance.
//
// Known catalog names take priority: a direct containment match returns
// the catalog's own name, and a reverse match ("梨有？" against "雪花梨")
// returns the user's keyword. Only then does the pattern table strip the
// surrounding chatter. When stripping would leave nothing usable the
// original query is returned unchanged.
func ExtractProductQuery(query string, provider catalog.Provider) string {
	if query == "" {
		return ""
	}
	queryLower := strings.ToLower(query)

	if provider != nil {
		for _, e := range provider.AllEntries() {
			for _, name := range []string{e.Name, e.DisplayName} {
				if name == "" {
					continue
				}
				if strings.Contains(queryLower, strings.ToLower(name)) {
					return name
				}
			}
		}

		// Reverse match: the user's keyword may be a fragment of a
		// longer catalog name.
		residue := queryLower
		for _, suffix := range availabilitySuffixes {
			residue = strings.ReplaceAll(residue, suffix, "")
		}
		residue = strings.TrimSpace(residue)
		if residue != "" {
			for _, e := range provider.AllEntries() {
				for _, name := range []string{e.Name, e.DisplayName} {
					if name != "" && strings.Contains(strings.ToLower(name), residue) {
						return residue
					}
				}
			}
		}
	}

	cleaned := queryLower
	for _, p := range chatterPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || utf8.RuneCountInString(cleaned) < 2 {
		return query
	}
	if cleaned != queryLower {
		slog.Debug("extracted product entity", "query", query, "entity", cleaned)
	}
	return cleaned
}
