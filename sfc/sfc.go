// Copyright © 2026 The Vize authors

// Package sfc splits a single-file component into its blocks. Offsets in
// every block are absolute within the original file, so diagnostics from
// downstream parsers point at the right source lines without remapping.
package sfc

import (
	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/template/ast"
	"github.com/ushironoko/vize-sub001/template/parser"
)

// Template is the parsed <template> block.
type Template struct {
	// Children is the template body, already parsed, with file-absolute
	// spans.
	Children []ast.Node
	Loc      ast.Span
}

// Script is one <script> block with its raw body.
type Script struct {
	Setup   bool
	Lang    string // lang attribute, "" for JavaScript
	Content string
	// ContentStart is the byte offset of Content in the file.
	ContentStart int
	Loc          ast.Span
}

// Style is one <style> block. The body is carried opaquely.
type Style struct {
	Scoped  bool
	Lang    string
	Content string
	Loc     ast.Span
}

// File is a parsed single-file component.
type File struct {
	Filename string
	Source   []byte

	Template *Template
	Scripts  []Script
	Styles   []Style

	// Errors collects structural problems from both the block splitter
	// and the template parser. The file is still usable.
	Errors []*parser.Error
}

// SetupScript returns the <script setup> block, or nil.
func (f *File) SetupScript() *Script {
	for i := range f.Scripts {
		if f.Scripts[i].Setup {
			return &f.Scripts[i]
		}
	}
	return nil
}

// PlainScript returns the first non-setup <script> block, or nil.
func (f *File) PlainScript() *Script {
	for i := range f.Scripts {
		if !f.Scripts[i].Setup {
			return &f.Scripts[i]
		}
	}
	return nil
}

// Parse splits src into blocks. The template body is parsed in the same
// pass; script and style bodies stay raw.
func Parse(filename string, src []byte) *File {
	root, errs := parser.Parse(src)
	f := &File{
		Filename: filename,
		Source:   src,
		Errors:   errs,
	}

	for _, node := range root.Children {
		el, ok := node.(*ast.Element)
		if !ok {
			continue
		}
		switch el.Tag {
		case "template":
			if f.Template != nil {
				f.errorf(el.Loc.Start, "duplicate <template> block")
				continue
			}
			f.Template = &Template{Children: el.Children, Loc: el.Loc}
		case "script":
			f.Scripts = append(f.Scripts, scriptBlock(el))
		case "style":
			f.Styles = append(f.Styles, styleBlock(el))
		}
	}

	if countSetup(f.Scripts) > 1 {
		f.errorf(f.Scripts[0].Loc.Start, "more than one <script setup> block")
	}
	return f
}

func countSetup(scripts []Script) int {
	n := 0
	for _, s := range scripts {
		if s.Setup {
			n++
		}
	}
	return n
}

func (f *File) errorf(offset int, msg string) {
	f.Errors = append(f.Errors, &parser.Error{Offset: offset, Message: msg})
}

func scriptBlock(el *ast.Element) Script {
	s := Script{Loc: el.Loc}
	if astutil.FindAttribute(el, "setup") != nil {
		s.Setup = true
	}
	if lang := astutil.FindAttribute(el, "lang"); lang != nil {
		s.Lang = lang.Value
	}
	s.Content, s.ContentStart = rawBody(el)
	return s
}

func styleBlock(el *ast.Element) Style {
	s := Style{Loc: el.Loc}
	if astutil.FindAttribute(el, "scoped") != nil {
		s.Scoped = true
	}
	if lang := astutil.FindAttribute(el, "lang"); lang != nil {
		s.Lang = lang.Value
	}
	s.Content, _ = rawBody(el)
	return s
}

func rawBody(el *ast.Element) (string, int) {
	if len(el.Children) == 0 {
		return "", el.Loc.End
	}
	text, ok := el.Children[0].(*ast.Text)
	if !ok {
		return "", el.Loc.End
	}
	return text.Content, text.Loc.Start
}
