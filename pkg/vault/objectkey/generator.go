// Package objectkey builds storage keys for uploaded media. Keys are grouped
// by media kind and component id, and every key carries a fresh random token
// so two uploads of the same filename never collide.
package objectkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/vault/pkg/vault/mediatype"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for a media upload
	GenerateKey(componentID string, kind mediatype.Type, metadata *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	FileName    string
	ContentType string

	// Token overrides the random identifier; tests use it for stable keys
	Token string
}

// Folder returns the top-level folder for a media kind.
func Folder(kind mediatype.Type) string {
	switch kind {
	case mediatype.Image:
		return "images"
	case mediatype.Video:
		return "videos"
	default:
		return "other"
	}
}

// ComponentPrefixes returns the key prefixes the folder and sharded layouts
// place a component's uploads under, one per media kind.
func ComponentPrefixes(componentID string) []string {
	id := sanitizePathComponent(componentID)
	kinds := []mediatype.Type{mediatype.Image, mediatype.Video, mediatype.Unknown}
	prefixes := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		prefixes = append(prefixes, Folder(kind)+"/"+id+"/")
	}
	return prefixes
}

// FolderGenerator produces the flat layout {images|videos|other}/<componentID>/<token>.<ext>
type FolderGenerator struct{}

func NewFolderGenerator() *FolderGenerator {
	return &FolderGenerator{}
}

func (g *FolderGenerator) GenerateKey(componentID string, kind mediatype.Type, metadata *KeyMetadata) string {
	name := token(metadata) + extension(metadata)
	return fmt.Sprintf("%s/%s/%s", Folder(kind), sanitizePathComponent(componentID), name)
}

// ShardedGenerator adds git-style sharding below the component folder
// {images|videos|other}/<componentID>/ab/cd1234ef5678.<ext>, for buckets
// holding many uploads per component.
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(componentID string, kind mediatype.Type, metadata *KeyMetadata) string {
	tok := token(metadata)

	shard := g.ShardLength
	if shard <= 0 {
		shard = 2
	}
	if len(tok) <= shard {
		shard = len(tok) - 1
	}
	if shard < 1 {
		return (&FolderGenerator{}).GenerateKey(componentID, kind, metadata)
	}

	return fmt.Sprintf("%s/%s/%s/%s%s", Folder(kind), sanitizePathComponent(componentID),
		tok[:shard], tok[shard:], extension(metadata))
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(componentID string, kind mediatype.Type, metadata *KeyMetadata) string
}

func NewCustomFuncGenerator(fn func(componentID string, kind mediatype.Type, metadata *KeyMetadata) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(componentID string, kind mediatype.Type, metadata *KeyMetadata) string {
	return g.GenerateFunc(componentID, kind, metadata)
}

// New returns the generator for a named layout: "folder" (default) or "sharded".
func New(layout string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(layout)) {
	case "", "folder":
		return NewFolderGenerator(), nil
	case "sharded":
		return NewShardedGenerator(), nil
	}
	return nil, fmt.Errorf("unknown object key layout %q", layout)
}

func token(metadata *KeyMetadata) string {
	if metadata != nil && metadata.Token != "" {
		return sanitizeFilename(metadata.Token)
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// extension keeps the original extension, lowercased. Only [a-z0-9] survive.
func extension(metadata *KeyMetadata) string {
	if metadata == nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(metadata.FileName, "\\", "/")))
	ext = strings.TrimPrefix(ext, ".")
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + b.String()
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	// Replace problematic characters for filesystem compatibility
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

func sanitizePathComponent(component string) string {
	c := sanitizeFilename(strings.TrimSpace(component))
	c = strings.Trim(c, ".")
	if c == "" {
		return "unassigned"
	}
	return c
}
