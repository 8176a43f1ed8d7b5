// Package container assembles packed blocks into the on-disk byte stream
// and reads such streams back.
//
// A container is a text header line followed by the raw concatenation of
// every block:
//
//	TAM_BLOCO:<block size>,MODO:<1 fixed | 2 variable>\n<block 1><block 2>...
//
// There are no separators and no per-block lengths. Block boundaries are
// recovered by splitting the body back into payloads and packing them again.
package container

import (
	"github.com/ssargent/blockfile/pkg/block"
)

// Assemble concatenates the header and blocks into a single byte stream
func Assemble(h Header, blocks []block.Block) []byte {
	header := h.Bytes()

	size := len(header)
	for _, b := range blocks {
		size += len(b)
	}

	out := make([]byte, 0, size)
	out = append(out, header...)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// HeaderFor returns the header describing blocks packed in the given mode
func HeaderFor(blockSize int, mode block.Mode) Header {
	return Header{BlockSize: blockSize, Encoding: mode.Encoding()}
}
