package vault

import "strings"

// Request DTOs

// CreateComponentRequest contains parameters for creating a dynamic component.
// Title, Description and Category are required. ID, Slug and Date are
// generated when empty.
type CreateComponentRequest struct {
	ID                string   `json:"id,omitempty"`
	Slug              string   `json:"slug,omitempty"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags,omitempty"`
	Author            string   `json:"author,omitempty"`
	Date              string   `json:"date,omitempty"`
	PreviewImage      string   `json:"previewImage,omitempty"`
	PreviewVideo      string   `json:"previewVideo,omitempty"`
	Content           Code     `json:"content"`
	Implementation    string   `json:"implementation,omitempty"`
	MoreInformation   string   `json:"moreInformation,omitempty"`
	ExternalSourceURL string   `json:"externalSourceUrl,omitempty"`
	Featured          bool     `json:"featured,omitempty"`
	Dependencies      []string `json:"dependencies,omitempty"`
}

// CodePatch updates individual code sections. Nil fields are left untouched.
type CodePatch struct {
	HTML            *string `json:"html,omitempty"`
	CSS             *string `json:"css,omitempty"`
	JS              *string `json:"js,omitempty"`
	ExternalScripts *string `json:"externalScripts,omitempty"`
}

// UpdateComponentRequest is a partial update. Nil fields keep their stored
// value. Tags, when set, replace the whole tag set.
type UpdateComponentRequest struct {
	Slug              *string    `json:"slug,omitempty"`
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Tags              *[]string  `json:"tags,omitempty"`
	Author            *string    `json:"author,omitempty"`
	Date              *string    `json:"date,omitempty"`
	PreviewImage      *string    `json:"previewImage,omitempty"`
	PreviewVideo      *string    `json:"previewVideo,omitempty"`
	Content           *CodePatch `json:"content,omitempty"`
	Implementation    *string    `json:"implementation,omitempty"`
	MoreInformation   *string    `json:"moreInformation,omitempty"`
	ExternalSourceURL *string    `json:"externalSourceUrl,omitempty"`
	Featured          *bool      `json:"featured,omitempty"`
	Dependencies      *[]string  `json:"dependencies,omitempty"`

	// RegenerateSlug re-derives the slug from the (new) title when Slug is nil.
	RegenerateSlug bool `json:"regenerateSlug,omitempty"`
}

// CreateCategoryRequest contains parameters for authoring a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateRequestFromRecord reads a create payload in either field spelling.
func CreateRequestFromRecord(raw Record) CreateComponentRequest {
	c := Normalize(raw)
	req := CreateComponentRequest{
		ID:                c.ID,
		Title:             strings.TrimSpace(c.Title),
		Description:       strings.TrimSpace(c.Description),
		Category:          c.Category,
		Tags:              c.Tags,
		Author:            c.Author,
		Date:              c.Date,
		PreviewImage:      c.PreviewImage,
		PreviewVideo:      c.PreviewVideo,
		Content:           c.Content,
		Implementation:    c.Implementation,
		MoreInformation:   c.MoreInformation,
		ExternalSourceURL: c.ExternalSourceURL,
		Featured:          c.Featured,
		Dependencies:      c.Dependencies,
	}
	// Normalize derives a slug from the title; only carry an explicit one.
	if raw.str("slug") != "" {
		req.Slug = c.Slug
	}
	return req
}

// CreateRequestFromComponent turns an existing component into a create
// payload. The id and slug are kept, so an edited registry component stored
// this way overrides the registry copy. Callers that want a fresh record
// clear ID first.
func CreateRequestFromComponent(c Component) CreateComponentRequest {
	return CreateComponentRequest{
		ID:                c.ID,
		Slug:              c.Slug,
		Title:             c.Title,
		Description:       c.Description,
		Category:          c.Category,
		Tags:              append([]string(nil), c.Tags...),
		Author:            c.Author,
		Date:              c.Date,
		PreviewImage:      c.PreviewImage,
		PreviewVideo:      c.PreviewVideo,
		Content:           c.Content,
		Implementation:    c.Implementation,
		MoreInformation:   c.MoreInformation,
		ExternalSourceURL: c.ExternalSourceURL,
		Featured:          c.Featured,
		Dependencies:      append([]string(nil), c.Dependencies...),
	}
}

// PatchFromRecord reads a partial update in either field spelling. Only keys
// present in raw are set on the patch; a null tags or content value counts as
// absent.
func PatchFromRecord(raw Record) UpdateComponentRequest {
	var p UpdateComponentRequest

	strField := func(field string) *string {
		if !raw.has(field) {
			return nil
		}
		s := raw.str(field)
		return &s
	}

	p.Slug = strField("slug")
	p.Title = strField("title")
	p.Description = strField("description")
	p.Category = strField("category")
	p.Author = strField("author")
	p.Date = strField("date")
	p.PreviewImage = strField("previewImage")
	p.PreviewVideo = strField("previewVideo")
	p.Implementation = strField("implementation")
	p.MoreInformation = strField("moreInformation")
	p.ExternalSourceURL = strField("externalSourceUrl")

	if raw.has("featured") {
		v, _ := raw.lookup("featured")
		b := asBool(v)
		p.Featured = &b
	}
	// An explicit null leaves the tags unchanged; an empty list clears them.
	if raw.hasValue("tags") || raw.hasValue("componentTags") {
		tags := normalizeRecordTags(raw)
		p.Tags = &tags
	}
	if raw.has("dependencies") {
		v, _ := raw.lookup("dependencies")
		deps := cleanList(asStringSlice(v))
		p.Dependencies = &deps
	}
	if v, ok := raw.lookup("regenerateSlug"); ok {
		p.RegenerateSlug = asBool(v)
	}

	nested := contentRecord(valueOrNil(raw.lookup("content")))
	rows := raw.hasValue("componentContent")
	if nested != nil || rows {
		code := normalizeRecordContent(raw)
		p.Content = &CodePatch{}
		for _, section := range Sections {
			// Sections absent from a nested object are left as stored.
			if nested != nil && !rows && !nested.has(sectionField(section)) {
				continue
			}
			body := code.Section(section)
			switch section {
			case SectionHTML:
				p.Content.HTML = &body
			case SectionCSS:
				p.Content.CSS = &body
			case SectionJS:
				p.Content.JS = &body
			case SectionExternal:
				p.Content.ExternalScripts = &body
			}
		}
	}

	return p
}

// Apply merges the patch onto c and returns the result.
func (p UpdateComponentRequest) Apply(c Component) Component {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Slug, p.Slug)
	set(&c.Title, p.Title)
	set(&c.Description, p.Description)
	set(&c.Category, p.Category)
	set(&c.Author, p.Author)
	set(&c.Date, p.Date)
	set(&c.PreviewImage, p.PreviewImage)
	set(&c.PreviewVideo, p.PreviewVideo)
	set(&c.Implementation, p.Implementation)
	set(&c.MoreInformation, p.MoreInformation)
	set(&c.ExternalSourceURL, p.ExternalSourceURL)
	if p.Featured != nil {
		c.Featured = *p.Featured
	}
	if p.Tags != nil {
		c.Tags = NormalizeTags(*p.Tags)
	}
	if p.Dependencies != nil {
		c.Dependencies = cleanList(*p.Dependencies)
	}
	if p.Content != nil {
		set(&c.Content.HTML, p.Content.HTML)
		set(&c.Content.CSS, p.Content.CSS)
		set(&c.Content.JS, p.Content.JS)
		set(&c.Content.ExternalScripts, p.Content.ExternalScripts)
	}
	c.PreviewImage = strings.TrimSpace(c.PreviewImage)
	c.PreviewVideo = strings.TrimSpace(c.PreviewVideo)
	c.MediaType = DeriveMediaType(c.PreviewImage, c.PreviewVideo, c.MediaType)
	return c
}
