package container

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/codec"
)

// File is a parsed container
type File struct {
	Header Header
	Body   []byte
}

// Read parses a container from r
func Read(r io.Reader) (*File, error) {
	reader := bufio.NewReader(r)

	line, err := reader.ReadBytes(headerEnd)
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing header line", ErrInvalidHeader)
		}
		return nil, err
	}

	header, err := ParseHeader(line)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &File{Header: header, Body: body}, nil
}

// ReadFile opens and parses the container at path
func ReadFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Parse parses an in-memory container
func Parse(data []byte) (*File, error) {
	return Read(bytes.NewReader(data))
}

// HasContinuations reports whether the body holds any continuation marker.
// Payload text never contains the marker byte, so any occurrence is one.
func (f *File) HasContinuations() bool {
	return bytes.IndexByte(f.Body, block.ContinuationMarker) >= 0
}

// Layout infers the packing mode that produced the body. A variable body
// without continuation markers is reported as contiguous; packing its
// payloads either way yields the same blocks.
func (f *File) Layout() block.Mode {
	switch {
	case f.Header.Encoding == codec.Fixed:
		return block.FixedBlocks
	case f.HasContinuations():
		return block.VariableSpanned
	default:
		return block.VariableContiguous
	}
}

// Payloads splits the body back into the payload sequence it was packed from
func (f *File) Payloads() ([][]byte, error) {
	switch f.Header.Encoding {
	case codec.Fixed:
		return fixedPayloads(f.Body)
	case codec.Variable:
		return variablePayloads(f.Body)
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %s", ErrMalformedBody, f.Header.Encoding)
	}
}

func fixedPayloads(body []byte) ([][]byte, error) {
	if len(body)%codec.RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedBody, len(body), codec.RecordSize)
	}

	payloads := make([][]byte, 0, len(body)/codec.RecordSize)
	for off := 0; off < len(body); off += codec.RecordSize {
		payloads = append(payloads, body[off:off+codec.RecordSize])
	}
	return payloads, nil
}

func variablePayloads(body []byte) ([][]byte, error) {
	var (
		payloads [][]byte
		current  []byte
	)

	for _, b := range body {
		if b == block.ContinuationMarker {
			continue
		}
		current = append(current, b)
		if b == codec.EndOfRecord {
			payloads = append(payloads, current)
			current = nil
		}
	}

	if len(current) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes without end-of-record marker", ErrMalformedBody, len(current))
	}
	return payloads, nil
}
