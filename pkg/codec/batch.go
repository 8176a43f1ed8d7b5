package codec

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EncodeAll validates and encodes records concurrently and returns their
// payloads in input order. concurrency <= 0 leaves the number of goroutines
// unbounded.
func (c *RecordCodec) EncodeAll(ctx context.Context, records []Record, concurrency int) ([][]byte, error) {
	payloads := make([][]byte, len(records))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := records[i].Validate(); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			p, err := c.Encode(records[i])
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			payloads[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}
