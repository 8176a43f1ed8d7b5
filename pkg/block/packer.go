package block

import (
	"github.com/ssargent/blockfile/pkg/codec"
)

// ContinuationMarker ends a spanned block whose last record continues in
// the next block.
const ContinuationMarker = codec.ContinuationMarker

const markerSize = 1

// Block is a finalized run of payload bytes, never longer than the capacity
// it was packed with.
type Block []byte

// Result is the output of one Pack call
type Result struct {
	Blocks []Block
	Splits int // continuation markers written
}

// TotalBytes sums the length of every block
func (r *Result) TotalBytes() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b)
	}
	return n
}

// Packer packs payloads into blocks of a fixed capacity
type Packer struct {
	capacity int
	mode     Mode
}

// NewPacker validates the capacity against the mode and returns a packer.
func NewPacker(capacity int, mode Mode) (*Packer, error) {
	if !mode.Valid() {
		return nil, &ConfigError{Field: "layout", Value: int(mode), Reason: "unknown packing mode"}
	}
	if capacity <= 0 {
		return nil, &ConfigError{Field: "block_size", Value: capacity, Reason: "must be positive"}
	}

	switch mode {
	case FixedBlocks:
		if capacity < codec.RecordSize {
			return nil, &CapacityError{Mode: mode, Capacity: capacity, Record: -1, Size: codec.RecordSize}
		}
	case VariableSpanned:
		// At least one payload byte must fit beside the marker
		if capacity <= markerSize {
			return nil, &ConfigError{Field: "block_size", Value: capacity, Reason: "must be at least 2 for spanned records"}
		}
	}

	return &Packer{capacity: capacity, mode: mode}, nil
}

// Capacity returns the block capacity in bytes
func (p *Packer) Capacity() int {
	return p.capacity
}

// Mode returns the packing mode
func (p *Packer) Mode() Mode {
	return p.mode
}

// Pack distributes payloads over blocks in input order. On error no blocks
// are returned.
func (p *Packer) Pack(payloads [][]byte) (*Result, error) {
	acc := newAccumulator(p.capacity)

	switch p.mode {
	case FixedBlocks, VariableContiguous:
		for i, payload := range payloads {
			if err := p.checkWhole(i, payload); err != nil {
				return nil, err
			}
			if len(payload) > acc.free() {
				acc.flush()
			}
			acc.write(payload)
		}
	case VariableSpanned:
		for _, payload := range payloads {
			acc.span(payload)
		}
	}

	acc.flush()
	return &Result{Blocks: acc.blocks, Splits: acc.splits}, nil
}

func (p *Packer) checkWhole(i int, payload []byte) error {
	if p.mode == FixedBlocks && len(payload) != codec.RecordSize {
		return &ConfigError{Field: "payload", Value: i, Reason: "is not a fixed-width record"}
	}
	if len(payload) > p.capacity {
		return &CapacityError{Mode: p.mode, Capacity: p.capacity, Record: i, Size: len(payload)}
	}
	return nil
}

// Pack is a convenience wrapper around NewPacker and Packer.Pack
func Pack(payloads [][]byte, capacity int, mode Mode) ([]Block, error) {
	p, err := NewPacker(capacity, mode)
	if err != nil {
		return nil, err
	}
	res, err := p.Pack(payloads)
	if err != nil {
		return nil, err
	}
	return res.Blocks, nil
}

// accumulator owns the open block for a single Pack call
type accumulator struct {
	capacity int
	buf      []byte
	blocks   []Block
	splits   int
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{capacity: capacity}
}

func (a *accumulator) free() int {
	return a.capacity - len(a.buf)
}

func (a *accumulator) write(b []byte) {
	a.buf = append(a.buf, b...)
}

// flush finalizes the open block; an empty block is never emitted
func (a *accumulator) flush() {
	if len(a.buf) == 0 {
		return
	}
	a.blocks = append(a.blocks, Block(a.buf))
	a.buf = nil
}

// span writes payload, splitting it across as many blocks as needed. A block
// with no room for at least one payload byte plus the marker is closed as is.
func (a *accumulator) span(payload []byte) {
	rest := payload
	for len(rest) > 0 {
		free := a.free()
		if len(rest) <= free {
			a.write(rest)
			return
		}
		if free > markerSize {
			n := free - markerSize
			a.write(rest[:n])
			a.buf = append(a.buf, ContinuationMarker)
			a.splits++
			rest = rest[n:]
		}
		a.flush()
	}
}
