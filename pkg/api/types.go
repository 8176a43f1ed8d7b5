package api

import (
	"github.com/segmentio/ksuid"

	"github.com/ssargent/blockfile/pkg/analyzer"
	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/catalog"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PackRequest asks the server to generate records and pack them. Zero
// values fall back to the server defaults.
type PackRequest struct {
	Records       int    `json:"records"`
	Seed          int64  `json:"seed"`
	BlockSize     int    `json:"block_size"`
	Layout        string `json:"layout"`
	IncludeStream bool   `json:"include_stream"`
}

// PackResponse describes a completed packing run
type PackResponse struct {
	RunID     string          `json:"run_id,omitempty"`
	Layout    block.Mode      `json:"layout"`
	BlockSize int             `json:"block_size"`
	Records   int             `json:"records"`
	Splits    int             `json:"splits"`
	Header    string          `json:"header"`
	Report    analyzer.Report `json:"report"`
	Stream    []byte          `json:"stream,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port        int
	Bind        string
	APIKey      string // empty disables the X-API-Key check
	BlockSize   int    // default for requests that omit block_size
	Layout      block.Mode
	MaxRecords  int
	Concurrency int
}

// RunStore records packing runs
type RunStore interface {
	Save(run *catalog.Run) (ksuid.KSUID, error)
	GetString(id string) (*catalog.Run, error)
	List(limit int) ([]*catalog.Run, error)
}
