// Package pipeline runs records through encoding, packing, assembly and
// analysis.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ssargent/blockfile/pkg/analyzer"
	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/codec"
	"github.com/ssargent/blockfile/pkg/container"
	"github.com/ssargent/blockfile/pkg/logging"
)

// Options controls a packing run
type Options struct {
	Capacity    int
	Layout      block.Mode
	Concurrency int // encoder goroutines, 0 means GOMAXPROCS
	Logger      *slog.Logger
}

// Result holds everything a run produced
type Result struct {
	Header  container.Header
	Layout  block.Mode
	Records int
	Blocks  []block.Block
	Splits  int
	Stream  []byte
	Report  analyzer.Report
	Elapsed time.Duration
}

// Run encodes records with the layout's encoding and packs them
func Run(ctx context.Context, records []codec.Record, opts Options) (*Result, error) {
	start := time.Now()
	logger := logging.OrDiscard(opts.Logger)

	packer, err := block.NewPacker(opts.Capacity, opts.Layout)
	if err != nil {
		return nil, err
	}

	rc := codec.NewRecordCodec(opts.Layout.Encoding())
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	logger.Debug("encoding records", "records", len(records), "encoding", rc.Mode(), "concurrency", concurrency)
	payloads, err := rc.EncodeAll(ctx, records, concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}

	return finish(ctx, packer, rc, payloads, logger, start)
}

// RunPayloads packs payloads that are already encoded, as recovered from an
// existing container.
func RunPayloads(ctx context.Context, payloads [][]byte, opts Options) (*Result, error) {
	start := time.Now()

	packer, err := block.NewPacker(opts.Capacity, opts.Layout)
	if err != nil {
		return nil, err
	}

	rc := codec.NewRecordCodec(opts.Layout.Encoding())
	return finish(ctx, packer, rc, payloads, logging.OrDiscard(opts.Logger), start)
}

func finish(ctx context.Context, packer *block.Packer, rc *codec.RecordCodec, payloads [][]byte, logger *slog.Logger, start time.Time) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packed, err := packer.Pack(payloads)
	if err != nil {
		logger.Warn("packing failed", "layout", packer.Mode(), "block_size", packer.Capacity(), "error", err)
		return nil, err
	}
	logger.Debug("packed payloads", "payloads", len(payloads), "blocks", len(packed.Blocks), "splits", packed.Splits)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	useful := 0
	for _, p := range payloads {
		useful += rc.UsefulBytes(p)
	}

	res := &Result{
		Header:  container.HeaderFor(packer.Capacity(), packer.Mode()),
		Layout:  packer.Mode(),
		Records: len(payloads),
		Blocks:  packed.Blocks,
		Splits:  packed.Splits,
	}

	// Assembly and analysis only read the blocks
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Stream = container.Assemble(res.Header, res.Blocks)
		return nil
	})
	g.Go(func() error {
		res.Report = analyzer.Analyze(res.Blocks, packer.Capacity(), useful)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	logger.Info("packing run complete",
		"layout", packer.Mode(),
		"block_size", packer.Capacity(),
		"records", res.Records,
		"blocks", res.Report.BlockCount,
		"partial_blocks", res.Report.PartialBlocks,
		"efficiency_pct", res.Report.Efficiency,
		"elapsed", res.Elapsed)

	return res, nil
}
