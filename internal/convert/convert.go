// Package convert orchestrates one end-to-end translation: parse the
// source vendor's config into the IR, apply an optional interface/zone
// mapping, run pre-migration analysis, and generate the target vendor's
// config. Grounded on the teacher's driver-invocation flow in
// vendors/*/adapter.go, generalized from a single device operation to a
// multi-stage pipeline.
package convert

import (
	"context"
	"fmt"

	"github.com/fwconvert/fwconvert/analyzer"
	"github.com/fwconvert/fwconvert/generator"
	"github.com/fwconvert/fwconvert/ir"
	"github.com/fwconvert/fwconvert/mapper"
	"github.com/fwconvert/fwconvert/parser"
)

// Request describes one conversion job.
type Request struct {
	SourceVendor parser.Vendor
	TargetVendor parser.Vendor
	Inputs       []parser.Input
	Mapping      mapper.Mapping
	Options      generator.Options
	// SkipAnalysis bypasses pre-migration analysis for large configs
	// where only the generated output is needed.
	SkipAnalysis bool
}

// Result is the complete output of one conversion job.
type Result struct {
	Config   *ir.FirewallConfig
	Analysis analyzer.Result
	Output   []byte
	Warnings []ir.Warning
}

// Run executes the full parse -> map -> analyze -> generate pipeline.
func Run(ctx context.Context, req Request) (Result, error) {
	var res Result

	p, err := parser.Get(req.SourceVendor)
	if err != nil {
		return res, fmt.Errorf("convert: %w", err)
	}
	g, err := generator.Get(req.TargetVendor)
	if err != nil {
		return res, fmt.Errorf("convert: %w", err)
	}

	cfg, err := p.Parse(ctx, parser.Request{Inputs: req.Inputs})
	if err != nil {
		return res, fmt.Errorf("convert: parse: %w", err)
	}
	res.Config = cfg
	res.Warnings = append(res.Warnings, cfg.Warnings...)

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	mapWarnings := mapper.Apply(cfg, req.Mapping)
	res.Warnings = append(res.Warnings, mapWarnings...)

	if !req.SkipAnalysis {
		res.Analysis = analyzer.Analyze(cfg)
	}

	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	out, genWarnings, err := g.Generate(ctx, cfg, req.Options)
	if err != nil {
		return res, fmt.Errorf("convert: generate: %w", err)
	}
	res.Output = out
	res.Warnings = append(res.Warnings, genWarnings...)

	return res, nil
}
