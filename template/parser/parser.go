// Copyright © 2026 The Vize authors

// Package parser implements the template-block parser. It turns template
// source bytes into the AST defined in template/ast.
//
// The parser is hand-rolled and fault tolerant: structural errors are
// collected with byte offsets and parsing continues with the remaining
// siblings wherever recovery is cheap, so IDE consumers always get a
// usable partial tree.
package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ushironoko/vize-sub001/astutil"
	"github.com/ushironoko/vize-sub001/template/ast"
)

// Error is a parse error anchored to a byte offset.
type Error struct {
	Offset  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Parse parses template source into an AST. The returned errors are
// advisory; the tree is always non-nil and contains everything that
// could be recovered.
func Parse(src []byte) (*ast.Root, []*Error) {
	p := &parser{src: string(src)}
	children := p.parseChildren("")
	root := &ast.Root{
		Children: children,
		Loc:      ast.Span{Start: 0, End: len(src)},
	}
	return root, p.errs
}

type parser struct {
	src  string
	pos  int
	errs []*Error
}

// voidTags never have children or closing tags.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextTags contain uninterpreted text up to their closing tag.
var rawTextTags = map[string]bool{
	"script": true, "style": true,
}

func (p *parser) errorf(offset int, format string, args ...interface{}) {
	p.errs = append(p.errs, &Error{Offset: offset, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// parseChildren parses sibling nodes until the closing tag of parentTag
// (or EOF). The closing tag itself is consumed.
func (p *parser) parseChildren(parentTag string) []ast.Node {
	var nodes []ast.Node
	for !p.eof() {
		switch {
		case p.peek("</"):
			start := p.pos
			name := p.parseCloseTag()
			if parentTag != "" && strings.EqualFold(name, parentTag) {
				return desugar(nodes)
			}
			// Stray or mismatched close tag. Report and drop it so the
			// remaining siblings still parse.
			p.errorf(start, "unexpected closing tag </%s>", name)
		case p.peek("<!--"):
			nodes = append(nodes, p.parseComment())
		case p.peek("<!"):
			p.skipDecl()
		case p.peek("<") && p.pos+1 < len(p.src) && isTagStart(p.src[p.pos+1]):
			nodes = append(nodes, p.parseElement())
		case p.peek("{{"):
			nodes = append(nodes, p.parseInterpolation())
		default:
			if text := p.parseText(); text != nil {
				nodes = append(nodes, text)
			}
		}
	}
	if parentTag != "" {
		p.errorf(p.pos, "unexpected end of template: <%s> is never closed", parentTag)
	}
	return desugar(nodes)
}

func isTagStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (p *parser) parseCloseTag() string {
	p.pos += 2 // "</"
	start := p.pos
	for !p.eof() && p.src[p.pos] != '>' {
		p.pos++
	}
	name := strings.TrimSpace(p.src[start:p.pos])
	if !p.eof() {
		p.pos++ // ">"
	}
	return name
}

func (p *parser) parseComment() *ast.Comment {
	start := p.pos
	p.pos += 4 // "<!--"
	end := strings.Index(p.src[p.pos:], "-->")
	if end < 0 {
		p.errorf(start, "unterminated comment")
		content := p.src[p.pos:]
		p.pos = len(p.src)
		return &ast.Comment{Content: content, Loc: ast.Span{Start: start, End: p.pos}}
	}
	content := p.src[p.pos : p.pos+end]
	p.pos += end + 3
	return &ast.Comment{Content: content, Loc: ast.Span{Start: start, End: p.pos}}
}

func (p *parser) skipDecl() {
	for !p.eof() && p.src[p.pos] != '>' {
		p.pos++
	}
	if !p.eof() {
		p.pos++
	}
}

func (p *parser) parseInterpolation() *ast.Interpolation {
	start := p.pos
	p.pos += 2 // "{{"
	end := strings.Index(p.src[p.pos:], "}}")
	if end < 0 {
		p.errorf(start, "unterminated interpolation")
		end = len(p.src) - p.pos
	}
	raw := p.src[p.pos : p.pos+end]
	innerStart := p.pos
	p.pos += end
	if p.peek("}}") {
		p.pos += 2
	}

	trimmed := strings.TrimSpace(raw)
	lead := strings.Index(raw, trimmed)
	if trimmed == "" {
		lead = 0
	}
	return &ast.Interpolation{
		Content:    trimmed,
		Loc:        ast.Span{Start: start, End: p.pos},
		ContentLoc: ast.Span{Start: innerStart + lead, End: innerStart + lead + len(trimmed)},
	}
}

func (p *parser) parseText() *ast.Text {
	start := p.pos
	for !p.eof() {
		if p.src[p.pos] == '<' || p.peek("{{") {
			break
		}
		p.pos++
	}
	if p.pos == start {
		// Lone "<" that is not a tag. Consume it as text to make progress.
		p.pos++
	}
	content := p.src[start:p.pos]
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return &ast.Text{Content: content, Loc: ast.Span{Start: start, End: p.pos}}
}

func (p *parser) parseElement() ast.Node {
	start := p.pos
	p.pos++ // "<"
	nameStart := p.pos
	for !p.eof() && isTagNameByte(p.src[p.pos]) {
		p.pos++
	}
	tag := p.src[nameStart:p.pos]

	el := &ast.Element{Tag: tag, Type: tagType(tag)}

	// Attributes.
	for {
		p.skipSpace()
		if p.eof() {
			p.errorf(start, "unexpected end of template inside <%s>", tag)
			el.Loc = ast.Span{Start: start, End: p.pos}
			return el
		}
		if p.peek("/>") {
			p.pos += 2
			el.SelfClosed = true
			el.Loc = ast.Span{Start: start, End: p.pos}
			return desugarElement(el)
		}
		if p.src[p.pos] == '>' {
			p.pos++
			break
		}
		prop := p.parseProp()
		if prop != nil {
			el.Props = append(el.Props, prop)
		}
	}

	if voidTags[tag] {
		el.Loc = ast.Span{Start: start, End: p.pos}
		return el
	}
	if rawTextTags[tag] {
		if text := p.parseRawText(tag); text != nil {
			el.Children = []ast.Node{text}
		}
		el.Loc = ast.Span{Start: start, End: p.pos}
		return el
	}

	el.Children = p.parseChildren(tag)
	el.Loc = ast.Span{Start: start, End: p.pos}
	return desugarElement(el)
}

func isTagNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_'
}

func tagType(tag string) ast.TagType {
	switch {
	case tag == "template":
		return ast.TagTemplate
	case tag == "slot":
		return ast.TagSlot
	case tag != "" && unicode.IsUpper(rune(tag[0])):
		return ast.TagComponent
	default:
		return ast.TagElement
	}
}

// parseRawText consumes the uninterpreted body of a raw-text element up
// to its closing tag. The body is kept verbatim as a single Text child so
// SFC block extraction can hand it to the right downstream parser.
func (p *parser) parseRawText(tag string) *ast.Text {
	start := p.pos
	closing := "</" + tag
	idx := strings.Index(strings.ToLower(p.src[p.pos:]), closing)
	if idx < 0 {
		p.errorf(p.pos, "unterminated <%s> block", tag)
		p.pos = len(p.src)
	} else {
		p.pos += idx
	}
	content := p.src[start:p.pos]
	if idx >= 0 {
		p.parseCloseTag()
	}
	if content == "" {
		return nil
	}
	return &ast.Text{Content: content, Loc: ast.Span{Start: start, End: start + len(content)}}
}

// parseProp parses one attribute or directive.
func (p *parser) parseProp() ast.Prop {
	start := p.pos
	for !p.eof() && !isPropNameEnd(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		// Unparseable byte; skip it to make progress.
		p.errorf(start, "unexpected character %q in tag", p.src[p.pos])
		p.pos++
		return nil
	}

	hasValue := false
	value := ""
	valueLoc := ast.Span{}
	if !p.eof() && p.src[p.pos] == '=' {
		p.pos++
		hasValue = true
		value, valueLoc = p.parseAttrValue()
	}
	loc := ast.Span{Start: start, End: p.pos}

	if isDirectiveName(name) {
		d := parseDirectiveName(name)
		d.Value = value
		d.HasValue = hasValue
		d.Loc = loc
		d.ValueLoc = valueLoc
		return d
	}
	return &ast.Attribute{
		Name:     name,
		Value:    value,
		HasValue: hasValue,
		Loc:      loc,
		ValueLoc: valueLoc,
	}
}

func isPropNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '=', '>', '/':
		return true
	}
	return false
}

func (p *parser) parseAttrValue() (string, ast.Span) {
	if p.eof() {
		return "", ast.Span{Start: p.pos, End: p.pos}
	}
	quote := p.src[p.pos]
	if quote == '"' || quote == '\'' {
		p.pos++
		start := p.pos
		for !p.eof() && p.src[p.pos] != quote {
			p.pos++
		}
		value := p.src[start:p.pos]
		loc := ast.Span{Start: start, End: p.pos}
		if p.eof() {
			p.errorf(start, "unterminated attribute value")
		} else {
			p.pos++
		}
		return value, loc
	}
	start := p.pos
	for !p.eof() && !isPropNameEnd(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], ast.Span{Start: start, End: p.pos}
}

func isDirectiveName(name string) bool {
	if name == "" {
		return false
	}
	switch name[0] {
	case ':', '@', '#', '.':
		return true
	}
	return strings.HasPrefix(name, "v-")
}

// parseDirectiveName splits a directive prop name into canonical name,
// argument, and modifiers: "@click.stop" -> on/click/[stop],
// ":[key]" -> bind/key/dynamic, "v-slot:header" -> slot/header.
func parseDirectiveName(name string) *ast.Directive {
	d := &ast.Directive{}
	switch name[0] {
	case ':', '.':
		d.Name = "bind"
		name = name[1:]
	case '@':
		d.Name = "on"
		name = name[1:]
	case '#':
		d.Name = "slot"
		name = name[1:]
	default:
		name = name[2:] // "v-"
		if colon := strings.IndexByte(name, ':'); colon >= 0 {
			d.Name = name[:colon]
			name = name[colon+1:]
		} else if dot := strings.IndexByte(name, '.'); dot >= 0 {
			d.Name = name[:dot]
			name = name[dot:]
		} else {
			d.Name = name
			name = ""
		}
	}
	if name == "" {
		return d
	}
	parts := strings.Split(name, ".")
	d.Arg = parts[0]
	d.Modifiers = parts[1:]
	if strings.HasPrefix(d.Arg, "[") && strings.HasSuffix(d.Arg, "]") {
		d.Arg = d.Arg[1 : len(d.Arg)-1]
		d.DynamicArg = true
	}
	return d
}

// desugarElement turns structural <template> wrappers into dedicated
// nodes: <template v-for> becomes an ast.For with pre-parsed aliases.
// v-if chains are handled at the sibling level by desugar.
func desugarElement(el *ast.Element) ast.Node {
	if el.Type != ast.TagTemplate {
		return el
	}
	vfor := astutil.FindDirective(el, "for")
	if vfor == nil {
		return el
	}
	fe, ok := astutil.ParseForExpression(vfor.Value)
	if !ok {
		// Malformed v-for stays on the element; the analyzer reports it.
		return el
	}
	loop := &ast.For{
		ValueAlias: fe.ValueAlias,
		KeyAlias:   fe.KeyAlias,
		IndexAlias: fe.IndexAlias,
		Source:     fe.Source,
		SourceLoc: ast.Span{
			Start: vfor.ValueLoc.Start + fe.SourceOffset,
			End:   vfor.ValueLoc.Start + fe.SourceOffset + len(fe.Source),
		},
		Children: el.Children,
		Loc:      el.Loc,
	}
	// A :key on the wrapper keys every iteration of the loop.
	for _, p := range el.Props {
		if d, ok := p.(*ast.Directive); ok && d.Name == "bind" && d.Arg == "key" {
			loop.Key = d.Value
			loop.KeyLoc = d.ValueLoc
			loop.HasKey = true
			break
		}
	}
	return loop
}

// desugar groups sibling <template v-if>/<template v-else-if>/<template
// v-else> wrappers into single ast.If nodes.
func desugar(nodes []ast.Node) []ast.Node {
	var out []ast.Node
	for i := 0; i < len(nodes); i++ {
		el, ok := nodes[i].(*ast.Element)
		if !ok || el.Type != ast.TagTemplate {
			out = append(out, nodes[i])
			continue
		}
		vif := astutil.FindDirective(el, "if")
		if vif == nil {
			out = append(out, nodes[i])
			continue
		}

		ifNode := &ast.If{Loc: el.Loc}
		ifNode.Branches = append(ifNode.Branches, templateBranch(el, vif, true))
		for i+1 < len(nodes) {
			next, ok := nodes[i+1].(*ast.Element)
			if !ok || next.Type != ast.TagTemplate {
				break
			}
			if d := astutil.FindDirective(next, "else-if"); d != nil {
				ifNode.Branches = append(ifNode.Branches, templateBranch(next, d, true))
				i++
				continue
			}
			if d := astutil.FindDirective(next, "else"); d != nil {
				ifNode.Branches = append(ifNode.Branches, templateBranch(next, d, false))
				i++
				break
			}
			break
		}
		last := ifNode.Branches[len(ifNode.Branches)-1]
		ifNode.Loc.End = last.Loc.End
		out = append(out, ifNode)
	}
	return out
}

func templateBranch(el *ast.Element, d *ast.Directive, conditional bool) ast.IfBranch {
	b := ast.IfBranch{
		Children: el.Children,
		Loc:      el.Loc,
	}
	if conditional {
		b.Condition = d.Value
		b.HasCondition = true
		b.ConditionLoc = d.ValueLoc
	}
	for _, prop := range el.Props {
		if d, ok := prop.(*ast.Directive); ok && d.Name == "bind" && d.Arg == "key" {
			b.Key = d.Value
			b.KeyLoc = d.ValueLoc
			b.HasKey = true
			break
		}
	}
	return b
}
