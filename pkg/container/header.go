package container

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/ssargent/blockfile/pkg/codec"
)

const (
	blockSizeKey = "TAM_BLOCO:"
	modeKey      = "MODO:"
	headerEnd    = '\n'
)

var (
	// ErrInvalidHeader is returned when the first line of a container cannot be parsed
	ErrInvalidHeader = errors.New("invalid container header")
	// ErrMalformedBody is returned when the body cannot be split back into payloads
	ErrMalformedBody = errors.New("malformed container body")
)

// Header is the text line that opens every container
type Header struct {
	BlockSize int
	Encoding  codec.EncodingMode
}

// Bytes renders the header line, newline included
func (h Header) Bytes() []byte {
	return []byte(fmt.Sprintf("%s%d,%s%d%c", blockSizeKey, h.BlockSize, modeKey, h.Encoding.Code(), headerEnd))
}

// ParseHeader parses a header line with or without its trailing newline
func ParseHeader(line []byte) (Header, error) {
	line = bytes.TrimSuffix(line, []byte{headerEnd})

	sizePart, modePart, ok := bytes.Cut(line, []byte{','})
	if !ok {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}
	if !bytes.HasPrefix(sizePart, []byte(blockSizeKey)) || !bytes.HasPrefix(modePart, []byte(modeKey)) {
		return Header{}, fmt.Errorf("%w: %q", ErrInvalidHeader, line)
	}

	size, err := strconv.Atoi(string(sizePart[len(blockSizeKey):]))
	if err != nil || size <= 0 {
		return Header{}, fmt.Errorf("%w: block size %q", ErrInvalidHeader, sizePart[len(blockSizeKey):])
	}

	code, err := strconv.Atoi(string(modePart[len(modeKey):]))
	if err != nil {
		return Header{}, fmt.Errorf("%w: mode %q", ErrInvalidHeader, modePart[len(modeKey):])
	}
	mode, err := codec.ModeFromCode(code)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	return Header{BlockSize: size, Encoding: mode}, nil
}
