package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/vault/pkg/vault"
)

// Repository implements vault.Repository using in-memory storage. Records are
// emitted in the flat camelCase shape with tags and content inlined.
type Repository struct {
	mu         sync.RWMutex
	components map[string]*vault.ComponentRow
	content    map[string]map[vault.ContentSection]*vault.ContentRow // component_id -> section -> row
	tags       map[uuid.UUID]*vault.Tag
	tagsByName map[string]uuid.UUID
	links      map[string][]uuid.UUID // component_id -> tag ids, in link order
	categories map[string]*vault.CategoryRow // slug -> row
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		components: make(map[string]*vault.ComponentRow),
		content:    make(map[string]map[vault.ContentSection]*vault.ContentRow),
		tags:       make(map[uuid.UUID]*vault.Tag),
		tagsByName: make(map[string]uuid.UUID),
		links:      make(map[string][]uuid.UUID),
		categories: make(map[string]*vault.CategoryRow),
	}
}

// Component operations

func (r *Repository) ListComponents(ctx context.Context, filters vault.ListFilters) ([]vault.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag := vault.NormalizeTag(filters.Tag)
	var result []vault.Record
	for _, row := range r.components {
		if filters.Featured != nil && row.Featured != *filters.Featured {
			continue
		}
		if filters.Category != "" && !strings.EqualFold(row.Category, strings.TrimSpace(filters.Category)) {
			continue
		}
		if tag != "" && !r.hasTag(row.ID, tag) {
			continue
		}
		result = append(result, r.record(row))
	}

	// Sort by created_at descending; the service applies the date order
	sort.Slice(result, func(i, j int) bool {
		return r.components[result[i]["id"].(string)].CreatedAt.After(r.components[result[j]["id"].(string)].CreatedAt)
	})

	return result, nil
}

func (r *Repository) GetComponent(ctx context.Context, id string) (vault.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, exists := r.components[id]
	if !exists {
		return nil, vault.ErrComponentNotFound
	}
	return r.record(row), nil
}

func (r *Repository) FindComponentBySlug(ctx context.Context, slug string) (vault.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.components {
		if row.Slug == slug {
			return r.record(row), nil
		}
	}
	return nil, vault.ErrComponentNotFound
}

func (r *Repository) CreateComponent(ctx context.Context, row *vault.ComponentRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[row.ID]; exists {
		return fmt.Errorf("component %s: %w", row.ID, vault.ErrDuplicate)
	}
	if r.slugInUse(row.Slug, row.ID) {
		return fmt.Errorf("slug %s: %w", row.Slug, vault.ErrDuplicate)
	}

	// Create a copy to avoid external modifications
	rowCopy := copyRow(row)
	r.components[row.ID] = rowCopy
	return nil
}

func (r *Repository) UpdateComponent(ctx context.Context, row *vault.ComponentRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.components[row.ID]
	if !exists {
		return vault.ErrComponentNotFound
	}
	if r.slugInUse(row.Slug, row.ID) {
		return fmt.Errorf("slug %s: %w", row.Slug, vault.ErrDuplicate)
	}

	rowCopy := copyRow(row)
	rowCopy.CreatedAt = existing.CreatedAt
	if rowCopy.UpdatedAt.IsZero() {
		rowCopy.UpdatedAt = time.Now().UTC()
	}
	r.components[row.ID] = rowCopy
	return nil
}

func (r *Repository) DeleteComponent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[id]; !exists {
		return vault.ErrComponentNotFound
	}
	delete(r.components, id)
	return nil
}

// Content operations

func (r *Repository) ListContent(ctx context.Context, componentID string) ([]*vault.ContentRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*vault.ContentRow
	for _, section := range vault.Sections {
		if row, ok := r.content[componentID][section]; ok {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}
	return result, nil
}

func (r *Repository) CreateContent(ctx context.Context, row *vault.ContentRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[row.ComponentID]; !exists {
		return fmt.Errorf("content for %s: %w", row.ComponentID, vault.ErrComponentNotFound)
	}
	sections, ok := r.content[row.ComponentID]
	if !ok {
		sections = make(map[vault.ContentSection]*vault.ContentRow)
		r.content[row.ComponentID] = sections
	}
	if _, exists := sections[row.Type]; exists {
		return fmt.Errorf("content %s/%s: %w", row.ComponentID, row.Type, vault.ErrDuplicate)
	}
	rowCopy := *row
	sections[row.Type] = &rowCopy
	return nil
}

func (r *Repository) UpdateContent(ctx context.Context, row *vault.ContentRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.content[row.ComponentID][row.Type]; !exists {
		return vault.ErrContentNotFound
	}
	rowCopy := *row
	r.content[row.ComponentID][row.Type] = &rowCopy
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, componentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.content, componentID)
	return nil
}

// Tag operations

func (r *Repository) GetOrCreateTag(ctx context.Context, name string) (*vault.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = vault.NormalizeTag(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is empty")
	}
	if id, ok := r.tagsByName[name]; ok {
		tagCopy := *r.tags[id]
		return &tagCopy, nil
	}

	tag := &vault.Tag{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	r.tags[tag.ID] = tag
	r.tagsByName[name] = tag.ID
	tagCopy := *tag
	return &tagCopy, nil
}

func (r *Repository) LinkTag(ctx context.Context, componentID string, tagID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[componentID]; !exists {
		return vault.ErrComponentNotFound
	}
	if _, exists := r.tags[tagID]; !exists {
		return fmt.Errorf("tag %s not found", tagID)
	}
	for _, id := range r.links[componentID] {
		if id == tagID {
			return nil
		}
	}
	r.links[componentID] = append(r.links[componentID], tagID)
	return nil
}

func (r *Repository) UnlinkTags(ctx context.Context, componentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.links, componentID)
	return nil
}

func (r *Repository) ListComponentTags(ctx context.Context, componentID string) ([]*vault.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*vault.Tag, 0, len(r.links[componentID]))
	for _, id := range r.links[componentID] {
		tagCopy := *r.tags[id]
		result = append(result, &tagCopy)
	}
	return result, nil
}

func (r *Repository) ListTags(ctx context.Context) ([]*vault.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*vault.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		tagCopy := *tag
		result = append(result, &tagCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Category operations

func (r *Repository) ListCategories(ctx context.Context) ([]*vault.CategoryRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*vault.CategoryRow, 0, len(r.categories))
	for _, row := range r.categories {
		rowCopy := *row
		result = append(result, &rowCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *Repository) CreateCategory(ctx context.Context, row *vault.CategoryRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[row.Slug]; exists {
		return fmt.Errorf("category %s: %w", row.Slug, vault.ErrDuplicate)
	}
	rowCopy := *row
	r.categories[row.Slug] = &rowCopy
	return nil
}

// helpers, called with the lock held

func (r *Repository) record(row *vault.ComponentRow) vault.Record {
	tags := make([]string, 0, len(r.links[row.ID]))
	for _, id := range r.links[row.ID] {
		tags = append(tags, r.tags[id].Name)
	}

	content := map[string]interface{}{}
	for _, section := range vault.Sections {
		if c, ok := r.content[row.ID][section]; ok {
			key := string(section)
			if section == vault.SectionExternal {
				key = "externalScripts"
			}
			content[key] = c.Body
		}
	}

	return vault.Record{
		"id":                row.ID,
		"slug":              row.Slug,
		"title":             row.Title,
		"description":       row.Description,
		"category":          row.Category,
		"author":            row.Author,
		"date":              row.Date,
		"previewImage":      row.PreviewImage,
		"previewVideo":      row.PreviewVideo,
		"mediaType":         row.MediaType,
		"implementation":    row.Implementation,
		"moreInformation":   row.MoreInformation,
		"externalSourceUrl": row.ExternalSourceURL,
		"featured":          row.Featured,
		"dependencies":      append([]string{}, row.Dependencies...),
		"tags":              tags,
		"content":           content,
		"createdAt":         row.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":         row.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (r *Repository) hasTag(componentID, name string) bool {
	for _, id := range r.links[componentID] {
		if r.tags[id].Name == name {
			return true
		}
	}
	return false
}

func (r *Repository) slugInUse(slug, id string) bool {
	for _, row := range r.components {
		if row.Slug == slug && row.ID != id {
			return true
		}
	}
	return false
}

func copyRow(row *vault.ComponentRow) *vault.ComponentRow {
	rowCopy := *row
	rowCopy.Dependencies = append([]string{}, row.Dependencies...)
	return &rowCopy
}

var _ vault.Repository = (*Repository)(nil)
