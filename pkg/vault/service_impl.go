package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/vault/pkg/vault/slug"
)

// SlugOwner reports the id of a component outside the dynamic store that
// already holds slug, if any.
type SlugOwner func(slug string) (id string, ok bool)

// service implements the Service interface
type service struct {
	repository Repository
	media      MediaStore
	eventSink  EventSink
	reserved   SlugOwner
	logger     *slog.Logger
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithMediaStore sets the media storage adapter. Without one, uploads fail
// with ErrStorageNotConfigured.
func WithMediaStore(store MediaStore) Option {
	return func(s *service) {
		s.media = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithReservedSlugs makes slugs held by other providers unavailable to new
// dynamic components, unless the ids match.
func WithReservedSlugs(owner SlugOwner) Option {
	return func(s *service) {
		s.reserved = owner
	}
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

// Component operations

func (s *service) ListComponents(ctx context.Context, filters ListFilters) ([]Component, error) {
	records, err := s.repository.ListComponents(ctx, filters)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	components := make([]Component, 0, len(records))
	for _, r := range records {
		c := s.normalize(r)
		// repositories may filter loosely; the contract is enforced here
		if !filters.Match(c) {
			continue
		}
		components = append(components, c)
	}
	SortByDate(components)
	return components, nil
}

func (s *service) GetComponent(ctx context.Context, id string) (*Component, error) {
	record, err := s.repository.GetComponent(ctx, id)
	if err != nil {
		if errors.Is(err, ErrComponentNotFound) {
			return nil, &NotFoundError{Kind: "component", Key: id, Err: ErrComponentNotFound}
		}
		return nil, &PersistenceError{Op: "get", ID: id, Err: err}
	}
	c := s.normalize(record)
	return &c, nil
}

func (s *service) GetComponentBySlug(ctx context.Context, sl string) (*Component, error) {
	record, err := s.repository.FindComponentBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, ErrComponentNotFound) {
			return nil, &NotFoundError{Kind: "component", Key: sl, Err: ErrComponentNotFound}
		}
		return nil, &PersistenceError{Op: "get_by_slug", Err: err}
	}
	c := s.normalize(record)
	return &c, nil
}

func (s *service) CreateComponent(ctx context.Context, req CreateComponentRequest) (*Component, error) {
	if missing := missingFields(req.Title, req.Description, req.Category); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	} else {
		_, err := s.repository.GetComponent(ctx, id)
		switch {
		case err == nil:
			return nil, &ValidationError{Fields: []string{"id"}, Message: "component already exists"}
		case !errors.Is(err, ErrComponentNotFound):
			return nil, &PersistenceError{Op: "create", ID: id, Err: err}
		}
	}

	base := slug.Generate(req.Slug)
	if base == "" {
		base = slug.Generate(req.Title)
	}
	if base == "" {
		base = slug.Generate(id)
	}
	sl, err := s.uniqueSlug(ctx, base, id)
	if err != nil {
		return nil, err
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.now().UTC().Format(time.RFC3339)
	}

	c := Component{
		ID:                id,
		Slug:              sl,
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		Category:          strings.TrimSpace(req.Category),
		Tags:              NormalizeTags(req.Tags),
		Author:            req.Author,
		Date:              date,
		PreviewImage:      strings.TrimSpace(req.PreviewImage),
		PreviewVideo:      strings.TrimSpace(req.PreviewVideo),
		Content:           req.Content,
		Implementation:    req.Implementation,
		MoreInformation:   req.MoreInformation,
		ExternalSourceURL: strings.TrimSpace(req.ExternalSourceURL),
		Featured:          req.Featured,
		Dependencies:      cleanList(req.Dependencies),
	}
	c.MediaType = DeriveMediaType(c.PreviewImage, c.PreviewVideo, "")

	now := s.now().UTC()
	row := componentRow(c)
	row.CreatedAt = now
	row.UpdatedAt = now
	if err := s.repository.CreateComponent(ctx, row); err != nil {
		return nil, &PersistenceError{Op: "create", ID: id, Err: err}
	}

	for _, section := range Sections {
		content := &ContentRow{ComponentID: id, Type: section, Body: c.Content.Section(section), UpdatedAt: now}
		if err := s.repository.CreateContent(ctx, content); err != nil {
			return nil, &PersistenceError{Op: "create_content", ID: id, Err: err}
		}
	}

	if err := s.linkTags(ctx, id, c.Tags); err != nil {
		return nil, err
	}

	created, err := s.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.eventSink.ComponentCreated(ctx, created); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "component_created", "id", id, "err", err)
	}

	return created, nil
}

func (s *service) UpdateComponent(ctx context.Context, id string, req UpdateComponentRequest) (*Component, error) {
	current, err := s.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	next := req.Apply(*current)
	next.ID = current.ID
	next.Title = strings.TrimSpace(next.Title)
	next.Description = strings.TrimSpace(next.Description)
	next.Category = strings.TrimSpace(next.Category)
	if missing := missingFields(next.Title, next.Description, next.Category); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	switch {
	case req.Slug != nil && slug.Generate(*req.Slug) != "":
		want := slug.Generate(*req.Slug)
		if want != current.Slug {
			taken, err := s.slugTaken(ctx, want, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, &ValidationError{Fields: []string{"slug"}, Message: "slug already in use"}
			}
		}
		next.Slug = want
	case req.RegenerateSlug:
		if next.Slug, err = s.uniqueSlug(ctx, slug.Generate(next.Title), id); err != nil {
			return nil, err
		}
	default:
		next.Slug = current.Slug
	}
	if next.Slug == "" {
		next.Slug = current.Slug
	}

	row := componentRow(next)
	row.UpdatedAt = s.now().UTC()
	if err := s.repository.UpdateComponent(ctx, row); err != nil {
		return nil, &PersistenceError{Op: "update", ID: id, Err: err}
	}

	if req.Content != nil {
		if err := s.upsertContent(ctx, id, next.Content); err != nil {
			return nil, err
		}
	}

	if req.Tags != nil {
		if err := s.repository.UnlinkTags(ctx, id); err != nil {
			return nil, &PersistenceError{Op: "unlink_tags", ID: id, Err: err}
		}
		if err := s.linkTags(ctx, id, next.Tags); err != nil {
			return nil, err
		}
	}

	if current.PreviewImage != next.PreviewImage {
		s.releaseMedia(ctx, current.PreviewImage)
	}
	if current.PreviewVideo != next.PreviewVideo {
		s.releaseMedia(ctx, current.PreviewVideo)
	}

	updated, err := s.GetComponent(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.eventSink.ComponentUpdated(ctx, updated); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "component_updated", "id", id, "err", err)
	}

	return updated, nil
}

func (s *service) DeleteComponent(ctx context.Context, id string) error {
	current, err := s.GetComponent(ctx, id)
	if err != nil {
		return err
	}

	// dependents before the parent row
	if err := s.repository.UnlinkTags(ctx, id); err != nil {
		return &PersistenceError{Op: "unlink_tags", ID: id, Err: err}
	}
	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &PersistenceError{Op: "delete_content", ID: id, Err: err}
	}
	if err := s.repository.DeleteComponent(ctx, id); err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}

	s.releaseMedia(ctx, current.PreviewImage)
	s.releaseMedia(ctx, current.PreviewVideo)
	if s.media != nil {
		// uploads that were never attached as a preview
		if n := s.media.Purge(ctx, id); n > 0 {
			s.logger.InfoContext(ctx, "removed unattached media", "id", id, "count", n)
		}
	}

	if err := s.eventSink.ComponentDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "component_deleted", "id", id, "err", err)
	}

	return nil
}

// Category and tag operations

func (s *service) ListCategories(ctx context.Context) ([]*CategoryRow, error) {
	rows, err := s.repository.ListCategories(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list_categories", Err: err}
	}
	return rows, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryRow, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}
	sl := slug.Generate(req.Slug)
	if sl == "" {
		sl = slug.Generate(name)
	}
	if sl == "" {
		return nil, &ValidationError{Fields: []string{"slug"}, Message: "cannot derive a slug"}
	}

	row := &CategoryRow{
		ID:          uuid.New(),
		Name:        name,
		Slug:        sl,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repository.CreateCategory(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, &ValidationError{Fields: []string{"slug"}, Message: "category already exists"}
		}
		return nil, &PersistenceError{Op: "create_category", Err: err}
	}
	return row, nil
}

func (s *service) ListTags(ctx context.Context) ([]*Tag, error) {
	tags, err := s.repository.ListTags(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list_tags", Err: err}
	}
	return tags, nil
}

// Media operations

func (s *service) UploadMedia(ctx context.Context, reader io.Reader, componentID, filename, mimeType string) (*StoredFile, error) {
	if s.media == nil {
		return nil, ErrStorageNotConfigured
	}
	componentID = strings.TrimSpace(componentID)
	if componentID == "" {
		return nil, &ValidationError{Fields: []string{"componentId"}}
	}

	file, err := s.media.Upload(ctx, reader, componentID, filename, mimeType)
	if err != nil {
		return nil, err
	}

	if err := s.eventSink.MediaUploaded(ctx, componentID, file); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "media_uploaded", "url", file.URL, "err", err)
	}
	return file, nil
}

func (s *service) DeleteMedia(ctx context.Context, url string) bool {
	if s.media == nil || url == "" {
		return false
	}
	if !s.media.Delete(ctx, url) {
		return false
	}
	if err := s.eventSink.MediaDeleted(ctx, url); err != nil {
		s.logger.WarnContext(ctx, "event sink failed", "event", "media_deleted", "url", url, "err", err)
	}
	return true
}

func (s *service) MediaExists(ctx context.Context, url string) (bool, error) {
	if s.media == nil {
		return false, ErrStorageNotConfigured
	}
	return s.media.Exists(ctx, url)
}

// Provider

func (s *service) Source() Source {
	return SourceDynamic
}

func (s *service) Components(ctx context.Context) ([]Component, error) {
	return s.ListComponents(ctx, ListFilters{})
}

// helpers

func (s *service) normalize(r Record) Component {
	c := Normalize(r)
	c.Source = SourceDynamic
	return c
}

// releaseMedia best-effort deletes a superseded preview that lives in
// managed storage. Failures are logged and never returned.
func (s *service) releaseMedia(ctx context.Context, url string) {
	if url == "" || s.media == nil || !s.media.Owns(url) {
		return
	}
	if !s.DeleteMedia(ctx, url) {
		s.logger.WarnContext(ctx, "failed to delete superseded media", "url", url)
	}
}

func (s *service) linkTags(ctx context.Context, componentID string, tags []string) error {
	for _, name := range tags {
		tag, err := s.repository.GetOrCreateTag(ctx, name)
		if err != nil {
			return &PersistenceError{Op: "create_tag", ID: componentID, Err: err}
		}
		if err := s.repository.LinkTag(ctx, componentID, tag.ID); err != nil {
			return &PersistenceError{Op: "link_tag", ID: componentID, Err: err}
		}
	}
	return nil
}

func (s *service) upsertContent(ctx context.Context, componentID string, code Code) error {
	rows, err := s.repository.ListContent(ctx, componentID)
	if err != nil {
		return &PersistenceError{Op: "list_content", ID: componentID, Err: err}
	}
	existing := make(map[ContentSection]bool, len(rows))
	for _, r := range rows {
		existing[r.Type] = true
	}

	now := s.now().UTC()
	for _, section := range Sections {
		row := &ContentRow{ComponentID: componentID, Type: section, Body: code.Section(section), UpdatedAt: now}
		if existing[section] {
			if err := s.repository.UpdateContent(ctx, row); err != nil {
				return &PersistenceError{Op: "update_content", ID: componentID, Err: err}
			}
			continue
		}
		if err := s.repository.CreateContent(ctx, row); err != nil {
			return &PersistenceError{Op: "create_content", ID: componentID, Err: err}
		}
	}
	return nil
}

// uniqueSlug returns base, or base-2, base-3 ... whichever is free for id.
func (s *service) uniqueSlug(ctx context.Context, base, id string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.slugTaken(ctx, candidate, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *service) slugTaken(ctx context.Context, sl, id string) (bool, error) {
	if s.reserved != nil {
		if owner, ok := s.reserved(sl); ok && owner != id {
			return true, nil
		}
	}
	record, err := s.repository.FindComponentBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, ErrComponentNotFound) {
			return false, nil
		}
		return false, &PersistenceError{Op: "find_slug", ID: id, Err: err}
	}
	return record.str("id") != id, nil
}

func componentRow(c Component) *ComponentRow {
	return &ComponentRow{
		ID:                c.ID,
		Slug:              c.Slug,
		Title:             c.Title,
		Description:       c.Description,
		Category:          c.Category,
		Author:            c.Author,
		Date:              c.Date,
		PreviewImage:      c.PreviewImage,
		PreviewVideo:      c.PreviewVideo,
		MediaType:         string(c.MediaType),
		Implementation:    c.Implementation,
		MoreInformation:   c.MoreInformation,
		ExternalSourceURL: c.ExternalSourceURL,
		Featured:          c.Featured,
		Dependencies:      append([]string{}, c.Dependencies...),
	}
}

func missingFields(title, description, category string) []string {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(category) == "" {
		missing = append(missing, "category")
	}
	return missing
}
