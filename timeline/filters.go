package timeline

import (
	"strings"

	"asset-aggregator/model"
)

// ApplyClientFilters narrows items by search text, content type categories and trait values.
// The input slice is never modified.
func ApplyClientFilters(items []model.AssetRecord, f model.FilterState) []model.AssetRecord {
	if !f.HasClientFilters() {
		return append([]model.AssetRecord(nil), items...)
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.AssetRecord, 0, len(items))
	for i := range items {
		if matches(&items[i], search, f) {
			out = append(out, items[i])
		}
	}
	return out
}

func matches(rec *model.AssetRecord, search string, f model.FilterState) bool {
	if search != "" && !matchesSearch(rec, search) {
		return false
	}
	if len(f.Categories) > 0 && !containsFold(f.Categories, rec.ContentType) {
		return false
	}
	for _, name := range f.TraitNames() {
		wanted := f.Traits[name]
		if len(wanted) == 0 {
			continue
		}
		value, ok := rec.TraitValue(name)
		if !ok || !containsFold(wanted, value) {
			return false
		}
	}
	return true
}

func matchesSearch(rec *model.AssetRecord, search string) bool {
	fields := []string{rec.Title, rec.Author, rec.Description, rec.Collection, rec.Creator.Name}
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
