package model

import "path/filepath"

// Kind tells whether a record's ContentRef holds text or an image path.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

// String returns the column/key name used for this kind in structured formats.
func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "text"
}

// Record is one annotatable unit flowing through the store, labeler, and evaluator.
type Record struct {
	Kind        Kind
	ContentRef  string   // text itself, or a resolvable image path
	DisplayName string   // file name for images, the text for text records
	Labels      []string // insertion order preserved; nil until assigned
}

// NewText builds an unlabeled text record.
func NewText(text string) Record {
	return Record{Kind: KindText, ContentRef: text, DisplayName: text}
}

// NewImage builds an unlabeled image record. The display name is the file name.
func NewImage(path string) Record {
	return Record{Kind: KindImage, ContentRef: path, DisplayName: filepath.Base(path)}
}

// Refs returns the ContentRef of every record, in order.
func Refs(records []Record) []string {
	refs := make([]string, len(records))
	for i, r := range records {
		refs[i] = r.ContentRef
	}
	return refs
}
