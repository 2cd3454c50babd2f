// Copyright © 2026 The Vize authors

// Package compile orchestrates the full pipeline for one component
// file: block splitting, script binding extraction, scope analysis,
// IR lowering, and linting. Each stage runs inside an OpenTelemetry
// span so embedders can see where a slow file spends its time.
//
// The pipeline never fails on malformed source — syntax problems and
// unresolved names surface as diagnostics in the result. Errors are
// reserved for context cancellation and script extraction failures.
package compile

import (
	"context"
	"fmt"

	"github.com/ushironoko/vize-sub001/analysis"
	"github.com/ushironoko/vize-sub001/ir"
	"github.com/ushironoko/vize-sub001/lint"
	"github.com/ushironoko/vize-sub001/script"
	"github.com/ushironoko/vize-sub001/sfc"
	"github.com/ushironoko/vize-sub001/template/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "vize/compile"

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}

// Options configures a pipeline run.
type Options struct {
	// Components are explicitly registered component names; usages of
	// these resolve without a matching import.
	Components []string

	// Analyzers replaces the default lint analyzer set when non-nil.
	Analyzers []*lint.Analyzer
}

// Result bundles every stage's output for one file.
type Result struct {
	File        *sfc.File
	Bindings    *analysis.ScriptBindings
	Croquis     *analysis.Croquis
	Document    *ir.Document
	Diagnostics []lint.Diagnostic
}

// File runs the whole pipeline over one component source.
func File(ctx context.Context, filename string, src []byte, opts Options) (*Result, error) {
	ctx, span := tracer().Start(ctx, "compile.File")
	span.SetAttributes(
		attribute.String("vize.file", filename),
		attribute.Int("vize.source_bytes", len(src)),
	)
	defer span.End()

	res := &Result{}

	f, err := parseStage(ctx, filename, src)
	if err != nil {
		return nil, err
	}
	res.File = f

	res.Bindings, err = extractStage(ctx, f)
	if err != nil {
		return nil, err
	}

	res.Croquis, err = analyzeStage(ctx, f, res.Bindings, opts)
	if err != nil {
		return nil, err
	}

	res.Document, err = lowerStage(ctx, filename, f, res.Croquis)
	if err != nil {
		return nil, err
	}

	res.Diagnostics, err = lintStage(ctx, filename, src, res.Croquis, opts)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("vize.diagnostics", len(res.Diagnostics)))
	return res, nil
}

func parseStage(ctx context.Context, filename string, src []byte) (*sfc.File, error) {
	_, span := tracer().Start(ctx, "compile.parse")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := sfc.Parse(filename, src)
	span.SetAttributes(
		attribute.Int("vize.parse_errors", len(f.Errors)),
		attribute.Int("vize.scripts", len(f.Scripts)),
		attribute.Int("vize.styles", len(f.Styles)),
		attribute.Bool("vize.has_template", f.Template != nil),
	)
	return f, nil
}

func extractStage(ctx context.Context, f *sfc.File) (*analysis.ScriptBindings, error) {
	ctx, span := tracer().Start(ctx, "compile.extract")
	defer span.End()

	var (
		bindings *analysis.ScriptBindings
		err      error
	)
	if blk := f.SetupScript(); blk != nil {
		bindings, err = script.ExtractSetup(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
	} else if blk := f.PlainScript(); blk != nil {
		bindings, err = script.ExtractOptions(ctx, []byte(blk.Content), script.LangForAttr(blk.Lang))
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("extract script bindings: %w", err)
	}
	if bindings != nil {
		span.SetAttributes(attribute.Int("vize.bindings", len(bindings.Names())))
	}
	return bindings, nil
}

func analyzeStage(ctx context.Context, f *sfc.File, bindings *analysis.ScriptBindings, opts Options) (*analysis.Croquis, error) {
	_, span := tracer().Start(ctx, "compile.analyze")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Template == nil {
		return nil, nil
	}

	cfg := &analysis.Config{
		Filename:   f.Filename,
		Bindings:   bindings,
		Components: opts.Components,
	}
	root := &ast.Root{Children: f.Template.Children, Loc: f.Template.Loc}
	croquis := analysis.Analyze(root, cfg)
	span.SetAttributes(
		attribute.Int("vize.scopes", croquis.Scopes.Len()),
		attribute.Int("vize.undefined_refs", len(croquis.UndefinedRefs)),
		attribute.Int("vize.expressions", len(croquis.TemplateExpressions)),
	)
	return croquis, nil
}

func lowerStage(ctx context.Context, filename string, f *sfc.File, croquis *analysis.Croquis) (*ir.Document, error) {
	_, span := tracer().Start(ctx, "compile.lower")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nodes []ast.Node
	if f.Template != nil {
		nodes = f.Template.Children
	}
	doc := ir.Lower(filename, nodes, croquis)
	span.SetAttributes(attribute.Int("vize.ir_roots", len(doc.Roots)))
	return doc, nil
}

func lintStage(ctx context.Context, filename string, src []byte, croquis *analysis.Croquis, opts Options) ([]lint.Diagnostic, error) {
	_, span := tracer().Start(ctx, "compile.lint")
	defer span.End()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analyzers := opts.Analyzers
	if analyzers == nil {
		analyzers = lint.DefaultAnalyzers()
	}
	linter := &lint.Linter{Analyzers: analyzers}
	diags, err := linter.LintFileWithContext(src, filename, croquis)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("lint %s: %w", filename, err)
	}
	span.SetAttributes(attribute.Int("vize.diagnostics", len(diags)))
	return diags, nil
}
