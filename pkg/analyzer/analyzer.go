// Package analyzer computes occupancy and efficiency statistics for a
// packed block sequence.
package analyzer

import (
	"github.com/cespare/xxhash/v2"

	"github.com/ssargent/blockfile/pkg/block"
)

// BlockUsage describes how full one block is
type BlockUsage struct {
	Index     int     `json:"index"`
	Bytes     int     `json:"bytes"`
	Occupancy float64 `json:"occupancy_pct"`
}

// Report summarizes a packed block sequence
type Report struct {
	BlockSize      int          `json:"block_size"`
	Blocks         []BlockUsage `json:"blocks"`
	BlockCount     int          `json:"block_count"`
	PartialBlocks  int          `json:"partial_blocks"`
	MeanOccupancy  float64      `json:"mean_occupancy_pct"`
	UsefulBytes    int          `json:"useful_bytes"`
	UsedBytes      int          `json:"used_bytes"`
	AllocatedBytes int          `json:"allocated_bytes"`
	Efficiency     float64      `json:"efficiency_pct"`
	Checksum       uint64       `json:"checksum"`
}

// Analyze computes per-block occupancy and aggregate efficiency. usefulBytes
// is the number of payload bytes that carry field data, excluding filler and
// markers.
func Analyze(blocks []block.Block, capacity int, usefulBytes int) Report {
	r := Report{
		BlockSize:   capacity,
		Blocks:      make([]BlockUsage, 0, len(blocks)),
		BlockCount:  len(blocks),
		UsefulBytes: usefulBytes,
	}

	digest := xxhash.New()
	var occupancySum float64
	for i, b := range blocks {
		occ := percent(len(b), capacity)
		r.Blocks = append(r.Blocks, BlockUsage{Index: i + 1, Bytes: len(b), Occupancy: occ})
		occupancySum += occ
		r.UsedBytes += len(b)
		if len(b) < capacity {
			r.PartialBlocks++
		}
		digest.Write(b)
	}
	r.Checksum = digest.Sum64()

	if r.BlockCount == 0 {
		return r
	}

	r.AllocatedBytes = r.BlockCount * capacity
	r.MeanOccupancy = occupancySum / float64(r.BlockCount)
	r.Efficiency = percent(usefulBytes, r.AllocatedBytes)
	return r
}

// Overhead returns the bytes spent on filler, markers and unused space
func (r *Report) Overhead() int {
	return r.AllocatedBytes - r.UsefulBytes
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
