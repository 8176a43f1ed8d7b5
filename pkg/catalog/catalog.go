// Package catalog keeps a history of packing runs in a pebble database.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/blockfile/pkg/analyzer"
	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/logging"
	"github.com/ssargent/blockfile/pkg/pipeline"
)

var runPrefix = []byte("run/")

// ErrNotFound is returned when no run has the requested ID
var ErrNotFound = errors.New("run not found")

// Run is one recorded packing run
type Run struct {
	ID        ksuid.KSUID     `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Source    string          `json:"source"`
	BlockSize int             `json:"block_size"`
	Layout    block.Mode      `json:"layout"`
	Records   int             `json:"records"`
	Splits    int             `json:"splits"`
	Output    string          `json:"output,omitempty"`
	Report    analyzer.Report `json:"report"`
}

// NewRun describes a pipeline result. source names what started the run,
// output is the container path if one was written.
func NewRun(res *pipeline.Result, source, output string) *Run {
	return &Run{
		Source:    source,
		BlockSize: res.Header.BlockSize,
		Layout:    res.Layout,
		Records:   res.Records,
		Splits:    res.Splits,
		Output:    output,
		Report:    res.Report,
	}
}

// Catalog stores runs keyed by KSUID, so keys sort by creation time
type Catalog struct {
	db     *pebble.DB
	logger *slog.Logger
}

// Open opens or creates a catalog in dir
func Open(dir string, logger *slog.Logger) (*Catalog, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", dir, err)
	}
	return &Catalog{db: db, logger: logging.OrDiscard(logger)}, nil
}

// Save stores a run, assigning its ID and creation time when unset
func (c *Catalog) Save(run *Run) (ksuid.KSUID, error) {
	if run.ID.IsNil() {
		run.ID = ksuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = run.ID.Time().UTC()
	}

	data, err := json.Marshal(run)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := c.db.Set(runKey(run.ID), data, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	c.logger.Debug("run recorded", "id", run.ID.String(), "layout", run.Layout, "blocks", run.Report.BlockCount)
	return run.ID, nil
}

// Get returns the run with the given ID
func (c *Catalog) Get(id ksuid.KSUID) (*Run, error) {
	data, closer, err := c.db.Get(runKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", id, err)
	}
	defer closer.Close()

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &run, nil
}

// GetString parses id and returns the matching run
func (c *Catalog) GetString(id string) (*Run, error) {
	parsed, err := ksuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}
	return c.Get(parsed)
}

// List returns up to limit runs, newest first. limit <= 0 returns every run.
func (c *Catalog) List(limit int) ([]*Run, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{
		LowerBound: runPrefix,
		UpperBound: prefixEnd(runPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over runs: %w", err)
	}
	defer iter.Close()

	runs := make([]*Run, 0)
	for iter.Last(); iter.Valid(); iter.Prev() {
		var run Run
		if err := json.Unmarshal(iter.Value(), &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run at key %x: %w", iter.Key(), err)
		}
		runs = append(runs, &run)
		if limit > 0 && len(runs) == limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate over runs: %w", err)
	}
	return runs, nil
}

// Delete removes a run. Deleting a missing run is not an error.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	if err := c.db.Delete(runKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying database
func (c *Catalog) Close() error {
	return c.db.Close()
}

func runKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(runPrefix)+len(id.Bytes()))
	key = append(key, runPrefix...)
	return append(key, id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
