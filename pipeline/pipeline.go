// Package pipeline runs the processing stages over a set of files: typedef
// preparation, namespace grouping and overload expansion.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/frontend"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/overload"
)

// Options configures a Processor
type Options struct {
	Workers      int // files expanded in parallel; <= 0 means 1
	MaxOverloads int // per declaration; 0 = unbounded
}

// Diagnostic records a declaration left out of the result and why
type Diagnostic struct {
	File        string `json:"file" yaml:"file"`
	Declaration string `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Err         error  `json:"-" yaml:"-"`
}

// Message returns the error text, for serialization
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Result is the outcome of one run. Files holds the top-level files after
// grouping, in input order, with members and fields replaced by overloads.
type Result struct {
	RunID          string
	Files          []*decl.File
	Diagnostics    []Diagnostic
	Declarations   int // members and fields before expansion
	Overloads      int
	TypeDefsPruned int
	Duration       time.Duration
}

// Processor runs the pipeline
type Processor struct {
	opts Options
	log  *zap.SugaredLogger
}

// New creates a Processor
func New(opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Processor{
		opts: opts,
		log:  logger.ComponentLogger("pipeline"),
	}
}

// Load reads the manifests at paths and runs the pipeline over their files.
// Declarations the front end skipped are reported as diagnostics.
func (p *Processor) Load(ctx context.Context, paths []string) (*Result, error) {
	files, skipped, err := frontend.Load(paths)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx, files)
	if err != nil {
		return nil, err
	}
	front := make([]Diagnostic, 0, len(skipped)+len(res.Diagnostics))
	for _, s := range skipped {
		front = append(front, Diagnostic{File: s.File, Declaration: s.Declaration, Err: s.Err})
	}
	res.Diagnostics = append(front, res.Diagnostics...)
	return res, nil
}

// Run prepares, groups and expands files. Files are expanded concurrently;
// the result order is the input order. ctx is checked between files.
func (p *Processor) Run(ctx context.Context, files []*decl.File) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.New().String()}
	ctx = logger.WithRunID(ctx, res.RunID)
	log := p.log.With(logger.FieldRunID, res.RunID)

	for _, f := range files {
		res.Declarations += len(f.Members) + len(f.Fields)
	}
	res.TypeDefsPruned = decl.PrepareTypeDefs(files)
	res.Files = decl.GroupFiles(files)

	log.Debugw("Grouped files",
		logger.FieldFiles, len(files),
		"top_level", len(res.Files),
		"typedefs_pruned", res.TypeDefsPruned)

	type fileResult struct {
		produced int
		skipped  []*overload.LimitError
	}
	results := make([]fileResult, len(res.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, f := range res.Files {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			produced, skipped := overload.ExpandFile(f, p.opts.MaxOverloads)
			results[i] = fileResult{produced: produced, skipped: skipped}
			log.Debugw("Expanded file",
				logger.FieldFile, f.Path,
				logger.FieldOverloads, produced,
				logger.FieldSkipped, len(skipped))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "expansion cancelled")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "expansion cancelled")
	}

	for _, r := range results {
		res.Overloads += r.produced
		for _, le := range r.skipped {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				File:        le.File,
				Declaration: le.Declaration.Owner(),
				Err:         le,
			})
			log.Warnw("Skipped declaration over overload limit",
				logger.FieldFile, le.File,
				logger.FieldDeclaration, le.Declaration.Owner(),
				logger.FieldCount, le.Count,
				logger.FieldLimit, le.Limit)
		}
	}
	res.Duration = time.Since(start)

	log.Infow("Expansion complete",
		logger.FieldFiles, len(files),
		logger.FieldCount, res.Declarations,
		logger.FieldOverloads, res.Overloads,
		logger.FieldDiagnostics, len(res.Diagnostics),
		logger.FieldWorkers, p.opts.Workers,
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}
