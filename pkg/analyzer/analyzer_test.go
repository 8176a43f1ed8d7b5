package analyzer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blockfile/pkg/block"
)

func TestAnalyze_FullFixedBlocks(t *testing.T) {
	blocks := []block.Block{
		bytes.Repeat([]byte("a"), 169),
		bytes.Repeat([]byte("b"), 169),
		bytes.Repeat([]byte("c"), 169),
	}

	r := Analyze(blocks, 169, 3*169)

	assert.Equal(t, 3, r.BlockCount)
	assert.Equal(t, 0, r.PartialBlocks)
	assert.InDelta(t, 100.0, r.MeanOccupancy, 1e-9)
	assert.InDelta(t, 100.0, r.Efficiency, 1e-9)
	assert.Equal(t, 507, r.UsedBytes)
	assert.Equal(t, 507, r.AllocatedBytes)
	assert.Zero(t, r.Overhead())

	require.Len(t, r.Blocks, 3)
	for i, u := range r.Blocks {
		assert.Equal(t, i+1, u.Index)
		assert.Equal(t, 169, u.Bytes)
		assert.InDelta(t, 100.0, u.Occupancy, 1e-9)
	}
}

func TestAnalyze_PartialBlocks(t *testing.T) {
	blocks := []block.Block{
		bytes.Repeat([]byte("x"), 100),
		bytes.Repeat([]byte("y"), 50),
		bytes.Repeat([]byte("z"), 25),
	}

	r := Analyze(blocks, 100, 160)

	assert.Equal(t, 2, r.PartialBlocks)
	assert.InDelta(t, 100.0, r.Blocks[0].Occupancy, 1e-9)
	assert.InDelta(t, 50.0, r.Blocks[1].Occupancy, 1e-9)
	assert.InDelta(t, 25.0, r.Blocks[2].Occupancy, 1e-9)
	assert.InDelta(t, 175.0/3, r.MeanOccupancy, 1e-9)
	assert.InDelta(t, 160.0/3, r.Efficiency, 1e-9)
	assert.Equal(t, 175, r.UsedBytes)
	assert.Equal(t, 140, r.Overhead())
}

func TestAnalyze_NoBlocks(t *testing.T) {
	r := Analyze(nil, 512, 0)

	assert.Zero(t, r.BlockCount)
	assert.Zero(t, r.MeanOccupancy)
	assert.Zero(t, r.Efficiency)
	assert.Zero(t, r.AllocatedBytes)
	assert.Empty(t, r.Blocks)
}

func TestAnalyze_EfficiencyBounds(t *testing.T) {
	payloads := [][]byte{}
	useful := 0
	for i := 1; i <= 40; i++ {
		p := bytes.Repeat([]byte{'a'}, i*3)
		p = append(p, 0xFE)
		payloads = append(payloads, p)
		useful += len(p) - 1
	}

	for _, mode := range []block.Mode{block.VariableContiguous, block.VariableSpanned} {
		blocks, err := block.Pack(payloads, 128, mode)
		require.NoError(t, err)

		r := Analyze(blocks, 128, useful)
		assert.GreaterOrEqual(t, r.Efficiency, 0.0)
		assert.LessOrEqual(t, r.Efficiency, 100.0)
		assert.LessOrEqual(t, r.Efficiency, r.MeanOccupancy, mode.String())
	}
}

func TestAnalyze_Checksum(t *testing.T) {
	a := []block.Block{[]byte("abc"), []byte("def")}
	b := []block.Block{[]byte("abc"), []byte("def")}
	c := []block.Block{[]byte("abd"), []byte("def")}

	assert.Equal(t, Analyze(a, 3, 6).Checksum, Analyze(b, 3, 6).Checksum)
	assert.NotEqual(t, Analyze(a, 3, 6).Checksum, Analyze(c, 3, 6).Checksum)
}
