package vault

import (
	"sort"
	"strings"

	"github.com/tendant/vault/pkg/vault/slug"
)

// Categorize groups components by case-insensitive category and counts them,
// sorted by name. The first spelling seen names the group. Components without
// a category are skipped.
func Categorize(components []Component) []Category {
	index := make(map[string]int)
	out := []Category{}
	for _, c := range components {
		name := strings.TrimSpace(c.Category)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, Category{Name: name, Slug: slug.Generate(name), Count: 1})
	}

	sortCategories(out)
	return out
}

// MergeCategories overlays authored category rows on derived categories.
// Matching is by slug or case-insensitive name; an authored description wins
// and authored categories without components are listed with a zero count.
func MergeCategories(derived []Category, authored []*CategoryRow) []Category {
	out := make([]Category, len(derived))
	copy(out, derived)

	for _, row := range authored {
		if row == nil {
			continue
		}
		matched := false
		for i := range out {
			if out[i].Slug == row.Slug || strings.EqualFold(out[i].Name, row.Name) {
				if row.Description != "" {
					out[i].Description = row.Description
				}
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, Category{Name: row.Name, Slug: row.Slug, Description: row.Description})
		}
	}

	sortCategories(out)
	return out
}

// CountTags counts tag usage across components, most used first, then by
// name.
func CountTags(components []Component) []TagCount {
	counts := make(map[string]int)
	for _, c := range components {
		for _, t := range NormalizeTags(c.Tags) {
			counts[t]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func sortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		return strings.ToLower(cats[i].Name) < strings.ToLower(cats[j].Name)
	})
}
