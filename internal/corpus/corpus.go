// Package corpus loads the labeled résumé collection used to fit the screening model.
package corpus

import (
	"strings"

	"github.com/spigell/cv-screener/internal/apperrors"
)

// Document is one labeled training résumé.
type Document struct {
	Text     string
	Category string
}

// Corpus is an immutable collection of labeled documents.
type Corpus struct {
	docs []Document
}

// New validates and copies the documents. Labels are trimmed; empty labels are rejected.
func New(docs []Document) (*Corpus, error) {
	if len(docs) == 0 {
		return nil, apperrors.Data("load corpus", "corpus is empty")
	}

	out := make([]Document, len(docs))
	for i, doc := range docs {
		category := strings.TrimSpace(doc.Category)
		if category == "" {
			return nil, apperrors.Data("load corpus", "document %d has no category", i+1)
		}
		out[i] = Document{Text: doc.Text, Category: category}
	}
	return &Corpus{docs: out}, nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Documents returns a copy of the documents.
func (c *Corpus) Documents() []Document {
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Texts returns the document texts in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.docs))
	for i, doc := range c.docs {
		out[i] = doc.Text
	}
	return out
}

// Categories returns the document labels in corpus order.
func (c *Corpus) Categories() []string {
	out := make([]string, len(c.docs))
	for i, doc := range c.docs {
		out[i] = doc.Category
	}
	return out
}

// CountByCategory returns how many documents carry each label.
func (c *Corpus) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, doc := range c.docs {
		counts[doc.Category]++
	}
	return counts
}

