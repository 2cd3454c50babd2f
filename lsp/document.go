// Copyright © 2026 The Vize authors

package lsp

import (
	"context"
	"sync"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/diagnostic"
	"github.com/ushironoko/vize-sub001/script"
	"github.com/ushironoko/vize-sub001/sfc"
	"github.com/ushironoko/vize-sub001/template/ast"
)

// Document represents an open component file tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	file  *sfc.File
	lines *diagnostic.LineIndex

	// Analysis results, built lazily on first demand. analyzed marks
	// whether croquis/bindings are current; a file without a template
	// block legitimately analyzes to nil.
	croquis  *analysis.Croquis
	bindings *analysis.ScriptBindings
	analyzed bool
}

// parse splits the document into blocks and rebuilds the line index.
// Block splitting is fault tolerant: structural problems are collected
// on the file rather than aborting, so a half-typed document still
// yields whatever blocks parsed.
func (d *Document) parse() {
	d.file = sfc.Parse(uriToPath(d.URI), []byte(d.Content))
	d.lines = diagnostic.NewLineIndex([]byte(d.Content))
	d.croquis = nil
	d.bindings = nil
	d.analyzed = false
}

// analyze extracts script bindings and runs scope analysis on the
// template block. Caller holds d.mu.
func (d *Document) analyze(cfg *analysis.Config) {
	d.analyzed = true
	if d.file == nil || d.file.Template == nil {
		return
	}
	d.bindings = d.extractBindings()
	cfg.Bindings = d.bindings
	root := &ast.Root{Children: d.file.Template.Children, Loc: d.file.Template.Loc}
	d.croquis = analysis.Analyze(root, cfg)
}

// extractBindings runs the script extractor over the document's script
// block. Extraction errors degrade to no bindings rather than failing
// the whole analysis: the template is still checked, with script names
// reported as undefined.
func (d *Document) extractBindings() *analysis.ScriptBindings {
	ctx := context.Background()
	if blk := d.file.SetupScript(); blk != nil {
		b, err := script.ExtractSetup(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
		if err == nil {
			return b
		}
		return nil
	}
	if blk := d.file.PlainScript(); blk != nil {
		b, err := script.ExtractOptions(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
		if err == nil {
			return b
		}
	}
	return nil
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns a snapshot of the open documents.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
