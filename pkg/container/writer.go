package container

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssargent/blockfile/pkg/block"
)

const defaultBufferSize = 64 * 1024 // 64KB buffer

// WriterConfig holds configuration for the container writer
type WriterConfig struct {
	FilePath   string // Path of the container file, truncated on open
	BufferSize int    // Write buffer size
}

// Writer streams a header and blocks to a container file
type Writer struct {
	file          *os.File
	writer        *bufio.Writer
	offset        int64 // Current write offset
	headerWritten bool
}

// NewWriter creates the container file, replacing any existing one
func NewWriter(config WriterConfig) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	if config.BufferSize <= 0 {
		config.BufferSize = defaultBufferSize
	}

	return &Writer{
		file:   file,
		writer: bufio.NewWriterSize(file, config.BufferSize),
	}, nil
}

// WriteHeader writes the header line. It must be called once, before any block.
func (w *Writer) WriteHeader(h Header) error {
	if w.headerWritten {
		return errors.New("header already written")
	}
	n, err := w.writer.Write(h.Bytes())
	w.offset += int64(n)
	if err != nil {
		return err
	}
	w.headerWritten = true
	return nil
}

// WriteBlock appends a block and returns the offset it starts at
func (w *Writer) WriteBlock(b block.Block) (int64, error) {
	if !w.headerWritten {
		return 0, errors.New("header must be written before blocks")
	}

	blockOffset := w.offset
	n, err := w.writer.Write(b)
	w.offset += int64(n)
	if err != nil {
		return 0, err
	}
	return blockOffset, nil
}

// Close flushes buffered bytes and closes the file
func (w *Writer) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Size returns the number of bytes written so far
func (w *Writer) Size() int64 {
	return w.offset
}

// WriteFile writes a complete container and returns its size in bytes
func WriteFile(path string, h Header, blocks []block.Block) (int64, error) {
	w, err := NewWriter(WriterConfig{FilePath: path})
	if err != nil {
		return 0, err
	}

	if err := w.WriteHeader(h); err != nil {
		w.Close()
		return 0, err
	}
	for _, b := range blocks {
		if _, err := w.WriteBlock(b); err != nil {
			w.Close()
			return 0, err
		}
	}

	if err := w.Close(); err != nil {
		return 0, err
	}
	return w.Size(), nil
}
