package vault

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/vault/pkg/vault/mediatype"
)

// Source records which provider produced a Component.
type Source string

const (
	SourceRegistry Source = "registry"
	SourceDraft    Source = "draft"
	SourceDynamic  Source = "dynamic"
)

// ParseSource returns the Source named by s, or "" when s names none.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceRegistry:
		return SourceRegistry
	case SourceDraft:
		return SourceDraft
	case SourceDynamic:
		return SourceDynamic
	}
	return ""
}

// ContentSection is the discriminator of one component_content row.
type ContentSection string

const (
	SectionHTML     ContentSection = "html"
	SectionCSS      ContentSection = "css"
	SectionJS       ContentSection = "js"
	SectionExternal ContentSection = "external"
)

// Sections lists every code section in storage order.
var Sections = []ContentSection{SectionHTML, SectionCSS, SectionJS, SectionExternal}

// Code is the snippet payload of a component. All four fields are always
// present; an absent section is the empty string.
type Code struct {
	HTML            string `json:"html"`
	CSS             string `json:"css"`
	JS              string `json:"js"`
	ExternalScripts string `json:"externalScripts"`
}

// Section returns the body stored for s.
func (c Code) Section(s ContentSection) string {
	switch s {
	case SectionHTML:
		return c.HTML
	case SectionCSS:
		return c.CSS
	case SectionJS:
		return c.JS
	case SectionExternal:
		return c.ExternalScripts
	}
	return ""
}

// SetSection stores body under s. Unknown sections are ignored.
func (c *Code) SetSection(s ContentSection, body string) {
	switch s {
	case SectionHTML:
		c.HTML = body
	case SectionCSS:
		c.CSS = body
	case SectionJS:
		c.JS = body
	case SectionExternal:
		c.ExternalScripts = body
	}
}

// Component is one catalog entry in canonical form.
type Component struct {
	ID                string         `json:"id"`
	Slug              string         `json:"slug"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Category          string         `json:"category"`
	Tags              []string       `json:"tags"`
	Author            string         `json:"author"`
	Date              string         `json:"date"`
	PreviewImage      string         `json:"previewImage"`
	PreviewVideo      string         `json:"previewVideo"`
	MediaType         mediatype.Type `json:"mediaType"`
	Content           Code           `json:"content"`
	Implementation    string         `json:"implementation"`
	MoreInformation   string         `json:"moreInformation"`
	ExternalSourceURL string         `json:"externalSourceUrl"`
	Featured          bool           `json:"featured"`
	Dependencies      []string       `json:"dependencies"`
	Source            Source         `json:"source,omitempty"`
}

// Category is a derived grouping of components.
type Category struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// TagCount is a tag with the number of components carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ListFilters narrows a component listing. Zero values do not filter.
type ListFilters struct {
	Featured *bool
	Category string
	Tag      string
}

// Match reports whether c passes every set filter. Category matching is
// case-insensitive; tags are compared in normalized form.
func (f ListFilters) Match(c Component) bool {
	if f.Featured != nil && c.Featured != *f.Featured {
		return false
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(f.Category), strings.TrimSpace(c.Category)) {
		return false
	}
	if f.Tag != "" {
		want := NormalizeTag(f.Tag)
		found := false
		for _, t := range c.Tags {
			if t == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Record is a raw persisted component as read from a store, before
// normalization. Keys may be camelCase or snake_case.
type Record map[string]interface{}

// ComponentRow is the persisted shape of a component's metadata.
type ComponentRow struct {
	ID                string
	Slug              string
	Title             string
	Description       string
	Category          string
	Author            string
	Date              string
	PreviewImage      string
	PreviewVideo      string
	MediaType         string
	Implementation    string
	MoreInformation   string
	ExternalSourceURL string
	Featured          bool
	Dependencies      []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ContentRow holds one code section of a component.
type ContentRow struct {
	ComponentID string
	Type        ContentSection
	Body        string
	UpdatedAt   time.Time
}

// Tag is a normalized tag entity. Tags are created on first use and never
// deleted.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryRow is an authored category persisted in the categories table.
type CategoryRow struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoredFile describes an uploaded media asset.
type StoredFile struct {
	URL         string         `json:"url"`
	Path        string         `json:"path"`
	MediaType   mediatype.Type `json:"mediaType"`
	ContentType string         `json:"contentType,omitempty"`
	Size        int64          `json:"size"`
}

// ObjectMeta contains metadata about an object in a BlobStore.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for writing an object.
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}

// dateLayouts are the accepted spellings of Component.Date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a component date. Unparseable input yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortByDate orders components most-recent first. Equal or unparseable dates
// fall back to id order so the result is deterministic.
func SortByDate(components []Component) {
	sort.SliceStable(components, func(i, j int) bool {
		di, dj := ParseDate(components[i].Date), ParseDate(components[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return components[i].ID < components[j].ID
	})
}

// Clone returns a copy of c that shares no slices with it.
func (c Component) Clone() Component {
	c.Tags = append([]string{}, c.Tags...)
	c.Dependencies = append([]string{}, c.Dependencies...)
	return c
}
