// Package vault provides the component catalog behind The Vault: reusable
// HTML/CSS/JS snippets with preview media, tags and categories.
//
// Components come from several providers. The registry subpackage holds the
// compiled-in entries, the Service in this package manages the dynamic store
// (memory or Postgres repositories under repo/), and the drafts subpackage
// keeps pending custom components until they are migrated. The catalog
// subpackage merges all providers into one deduplicated, date-sorted listing.
//
// Field Spelling
//
// Persisted records disagree on naming (previewImage vs preview_image, nested
// component_tags/component_content relations vs flat inline values). Every
// record is collapsed into the canonical Component shape by Normalize at the
// read boundary; nothing past that boundary checks both spellings.
//
// Media
//
// Preview files are written through a MediaStore (see the media subpackage),
// which lays objects out as {images|videos|other}/<componentID>/<token>.<ext>
// on a pluggable BlobStore (storage/fs, storage/s3, storage/gcs,
// storage/memory).
package vault
