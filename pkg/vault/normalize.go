package vault

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/vault/pkg/vault/mediatype"
	"github.com/tendant/vault/pkg/vault/slug"
)

// fieldAliases maps each canonical field to the record keys it may be stored
// under, in order of preference. camelCase spellings come first.
var fieldAliases = map[string][]string{
	"id":                {"id"},
	"slug":              {"slug"},
	"title":             {"title"},
	"description":       {"description"},
	"category":          {"category"},
	"author":            {"author"},
	"date":              {"date", "publishedAt", "published_at", "createdAt", "created_at"},
	"previewImage":      {"previewImage", "preview_image"},
	"previewVideo":      {"previewVideo", "preview_video"},
	"mediaType":         {"mediaType", "media_type"},
	"implementation":    {"implementation"},
	"moreInformation":   {"moreInformation", "more_information"},
	"externalSourceUrl": {"externalSourceUrl", "externalSourceURL", "external_source_url"},
	"featured":          {"featured", "isFeatured", "is_featured"},
	"dependencies":      {"dependencies"},
	"tags":              {"tags"},
	"content":           {"content"},
	"source":            {"source"},
	"regenerateSlug":    {"regenerateSlug", "regenerate_slug"},

	// nested relations
	"componentTags":    {"componentTags", "component_tags"},
	"componentContent": {"componentContent", "component_content"},

	// code sections, inside content objects or inline on flat records
	"html":            {"html"},
	"css":             {"css"},
	"js":              {"js"},
	"externalScripts": {"externalScripts", "external_scripts", "external"},
}

// lookup returns the first non-empty value stored under any alias of field.
func (r Record) lookup(field string) (interface{}, bool) {
	for _, key := range fieldAliases[field] {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// has reports whether any alias of field is present, even with an empty value.
func (r Record) has(field string) bool {
	for _, key := range fieldAliases[field] {
		if _, ok := r[key]; ok {
			return true
		}
	}
	return false
}

// hasValue is like has but ignores keys whose value is an explicit null.
func (r Record) hasValue(field string) bool {
	for _, key := range fieldAliases[field] {
		if v, ok := r[key]; ok && v != nil {
			return true
		}
	}
	return false
}

func (r Record) str(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	return asString(v)
}

// Normalize collapses a raw record into the canonical Component shape. It is
// total: missing optional data yields defaults, never an error. Applying it to
// the output of ToRecord gives back an equal Component.
func Normalize(raw Record) Component {
	if raw == nil {
		raw = Record{}
	}

	c := Component{
		ID:                strings.TrimSpace(raw.str("id")),
		Slug:              strings.TrimSpace(raw.str("slug")),
		Title:             raw.str("title"),
		Description:       raw.str("description"),
		Category:          strings.TrimSpace(raw.str("category")),
		Author:            raw.str("author"),
		Date:              strings.TrimSpace(raw.str("date")),
		PreviewImage:      strings.TrimSpace(raw.str("previewImage")),
		PreviewVideo:      strings.TrimSpace(raw.str("previewVideo")),
		Implementation:    raw.str("implementation"),
		MoreInformation:   raw.str("moreInformation"),
		ExternalSourceURL: strings.TrimSpace(raw.str("externalSourceUrl")),
		Source:            ParseSource(raw.str("source")),
	}

	if v, ok := raw.lookup("featured"); ok {
		c.Featured = asBool(v)
	}

	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
	} else {
		c.Slug = slug.Generate(c.Slug)
	}

	c.Tags = normalizeRecordTags(raw)
	c.Dependencies = cleanList(asStringSlice(valueOrNil(raw.lookup("dependencies"))))
	c.Content = normalizeRecordContent(raw)
	c.MediaType = DeriveMediaType(c.PreviewImage, c.PreviewVideo, mediatype.Parse(raw.str("mediaType")))

	return c
}

// ToRecord renders c as a canonical camelCase record.
func ToRecord(c Component) Record {
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)
	deps := make([]string, len(c.Dependencies))
	copy(deps, c.Dependencies)

	r := Record{
		"id":                c.ID,
		"slug":              c.Slug,
		"title":             c.Title,
		"description":       c.Description,
		"category":          c.Category,
		"tags":              tags,
		"author":            c.Author,
		"date":              c.Date,
		"previewImage":      c.PreviewImage,
		"previewVideo":      c.PreviewVideo,
		"mediaType":         string(c.MediaType),
		"implementation":    c.Implementation,
		"moreInformation":   c.MoreInformation,
		"externalSourceUrl": c.ExternalSourceURL,
		"featured":          c.Featured,
		"dependencies":      deps,
		"content": map[string]interface{}{
			"html":            c.Content.HTML,
			"css":             c.Content.CSS,
			"js":              c.Content.JS,
			"externalScripts": c.Content.ExternalScripts,
		},
	}
	if c.Source != "" {
		r["source"] = string(c.Source)
	}
	return r
}

// DeriveMediaType returns the media type consistent with the preview URLs.
// A declared type is kept only when the matching preview is present;
// otherwise the type is re-derived, video first.
func DeriveMediaType(previewImage, previewVideo string, declared mediatype.Type) mediatype.Type {
	switch {
	case declared == mediatype.Video && previewVideo != "":
		return mediatype.Video
	case declared == mediatype.Image && previewImage != "":
		return mediatype.Image
	case previewVideo != "":
		return mediatype.Video
	case previewImage != "":
		return mediatype.Image
	}
	return mediatype.Unknown
}

// NormalizeTag lowercases and trims a tag.
func NormalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTags lowercases, trims and de-duplicates tags, dropping empty
// values. First-seen order is kept. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeRecordTags(raw Record) []string {
	if v, ok := raw.lookup("tags"); ok {
		return NormalizeTags(asStringSlice(v))
	}
	v, ok := raw.lookup("componentTags")
	if !ok {
		return []string{}
	}
	var names []string
	for _, item := range asList(v) {
		switch it := item.(type) {
		case string:
			names = append(names, it)
		default:
			row := asRecord(it)
			if row == nil {
				continue
			}
			// {tags: {name}} as returned by a nested select, or {tag: {...}}
			for _, key := range []string{"tags", "tag"} {
				if nested := asRecord(row[key]); nested != nil {
					names = append(names, asString(nested["name"]))
				}
			}
			if name, ok := row["name"]; ok {
				names = append(names, asString(name))
			}
		}
	}
	return NormalizeTags(names)
}

func normalizeRecordContent(raw Record) Code {
	var code Code

	nested := contentRecord(valueOrNil(raw.lookup("content")))

	rows := Code{}
	if v, ok := raw.lookup("componentContent"); ok {
		for _, item := range asList(v) {
			row := asRecord(item)
			if row == nil {
				continue
			}
			section := contentSection(asString(row["type"]))
			if section == "" {
				continue
			}
			body := ""
			for _, key := range []string{"content", "body", "code", "value"} {
				if b, ok := row[key]; ok && b != nil {
					body = asString(b)
					break
				}
			}
			rows.SetSection(section, body)
		}
	}

	for _, section := range Sections {
		field := sectionField(section)
		switch {
		case nested != nil && nested.has(field):
			code.SetSection(section, nested.str(field))
		case rows.Section(section) != "":
			code.SetSection(section, rows.Section(section))
		default:
			code.SetSection(section, raw.str(field))
		}
	}
	return code
}

// contentSection maps a component_content type discriminator.
func contentSection(t string) ContentSection {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "html":
		return SectionHTML
	case "css":
		return SectionCSS
	case "js", "javascript":
		return SectionJS
	case "external", "externalscripts", "external_scripts":
		return SectionExternal
	}
	return ""
}

func sectionField(s ContentSection) string {
	if s == SectionExternal {
		return "externalScripts"
	}
	return string(s)
}

// contentRecord reads a nested content object, which may also arrive as a
// JSON-encoded string.
func contentRecord(v interface{}) Record {
	if r := asRecord(v); r != nil {
		return r
	}
	if s, isString := v.(string); isString {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil {
			return m
		}
	}
	return nil
}

func valueOrNil(v interface{}, ok bool) interface{} {
	if !ok {
		return nil
	}
	return v
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return false
}

func asList(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case []Record:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case []string:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case string:
		var list []interface{}
		if json.Unmarshal([]byte(t), &list) == nil {
			return list
		}
	case []byte:
		var list []interface{}
		if json.Unmarshal(t, &list) == nil {
			return list
		}
	}
	return nil
}

func asRecord(v interface{}) Record {
	switch t := v.(type) {
	case Record:
		return t
	case map[string]interface{}:
		return Record(t)
	}
	return nil
}

// asStringSlice accepts native slices, JSON arrays and comma-separated strings.
func asStringSlice(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "[") {
			var list []string
			if json.Unmarshal([]byte(s), &list) == nil {
				return list
			}
		}
		if s == "" {
			return nil
		}
		return strings.Split(s, ",")
	}
	list := asList(v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, asString(item))
	}
	return out
}
