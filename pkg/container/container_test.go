package container

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/blockfile/pkg/block"
	"github.com/ssargent/blockfile/pkg/codec"
)

func testPayloads(mode block.Mode, n int) [][]byte {
	c := codec.NewRecordCodec(mode.Encoding())
	payloads := make([][]byte, n)
	for i := range payloads {
		p, err := c.Encode(codec.Record{
			ID:             int64(100000000 + i*7919),
			Name:           "Estudante " + string(rune('A'+i%26)),
			CPF:            "52998224725",
			Course:         codec.Courses[i%len(codec.Courses)],
			MotherName:     "Mãe",
			FatherName:     "Pai",
			EnrollmentYear: 2000 + i%26,
			GPA:            float64(i%100) / 10,
		})
		if err != nil {
			panic(err)
		}
		payloads[i] = p
	}
	return payloads
}

func TestHeader_Bytes(t *testing.T) {
	assert.Equal(t, "TAM_BLOCO:512,MODO:2\n", string(Header{BlockSize: 512, Encoding: codec.Variable}.Bytes()))
	assert.Equal(t, "TAM_BLOCO:169,MODO:1\n", string(HeaderFor(169, block.FixedBlocks).Bytes()))
	assert.Equal(t, codec.Variable, HeaderFor(64, block.VariableSpanned).Encoding)
}

func TestParseHeader(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		want    Header
		wantErr bool
	}{
		{name: "fixed", line: "TAM_BLOCO:169,MODO:1\n", want: Header{BlockSize: 169, Encoding: codec.Fixed}},
		{name: "variable without newline", line: "TAM_BLOCO:4096,MODO:2", want: Header{BlockSize: 4096, Encoding: codec.Variable}},
		{name: "missing comma", line: "TAM_BLOCO:169 MODO:1\n", wantErr: true},
		{name: "wrong key", line: "SIZE:169,MODO:1\n", wantErr: true},
		{name: "non numeric size", line: "TAM_BLOCO:abc,MODO:1\n", wantErr: true},
		{name: "zero size", line: "TAM_BLOCO:0,MODO:1\n", wantErr: true},
		{name: "unknown mode", line: "TAM_BLOCO:100,MODO:3\n", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHeader([]byte(tc.line))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHeader)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssemble(t *testing.T) {
	blocks := []block.Block{[]byte("abc"), []byte("de"), []byte("f")}
	out := Assemble(Header{BlockSize: 3, Encoding: codec.Variable}, blocks)
	assert.Equal(t, "TAM_BLOCO:3,MODO:2\nabcdef", string(out))

	empty := Assemble(Header{BlockSize: 10, Encoding: codec.Fixed}, nil)
	assert.Equal(t, "TAM_BLOCO:10,MODO:1\n", string(empty))
}

func TestWriteFile_ReadFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "container_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "nested", "alunos.dat")
	header := Header{BlockSize: 200, Encoding: codec.Variable}
	blocks, err := block.Pack(testPayloads(block.VariableSpanned, 12), 200, block.VariableSpanned)
	require.NoError(t, err)

	size, err := WriteFile(path, header, blocks)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Assemble(header, blocks), data)
	assert.Equal(t, int64(len(data)), size)

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header, f.Header)
	assert.Equal(t, data[len(header.Bytes()):], f.Body)
}

func TestWriter_Ordering(t *testing.T) {
	w, err := NewWriter(WriterConfig{FilePath: filepath.Join(t.TempDir(), "out.dat"), BufferSize: 16})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.WriteBlock(block.Block("early"))
	assert.Error(t, err)

	require.NoError(t, w.WriteHeader(Header{BlockSize: 10, Encoding: codec.Fixed}))
	assert.Error(t, w.WriteHeader(Header{BlockSize: 10, Encoding: codec.Fixed}))

	headerLen := int64(len("TAM_BLOCO:10,MODO:1\n"))
	off, err := w.WriteBlock(block.Block("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, headerLen, off)

	off, err = w.WriteBlock(block.Block("abc"))
	require.NoError(t, err)
	assert.Equal(t, headerLen+10, off)
	assert.Equal(t, headerLen+13, w.Size())
}

func TestRead_MissingHeader(t *testing.T) {
	_, err := Parse([]byte("no newline here"))
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.dat"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFile_PayloadsRecoverBlocks(t *testing.T) {
	testCases := []struct {
		mode     block.Mode
		capacity int
	}{
		{mode: block.FixedBlocks, capacity: 500},
		{mode: block.VariableContiguous, capacity: 256},
		{mode: block.VariableSpanned, capacity: 64},
	}

	for _, tc := range testCases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			payloads := testPayloads(tc.mode, 30)
			blocks, err := block.Pack(payloads, tc.capacity, tc.mode)
			require.NoError(t, err)

			f, err := Parse(Assemble(HeaderFor(tc.capacity, tc.mode), blocks))
			require.NoError(t, err)
			assert.Equal(t, tc.mode, f.Layout())

			recovered, err := f.Payloads()
			require.NoError(t, err)
			assert.Equal(t, payloads, recovered)

			repacked, err := block.Pack(recovered, f.Header.BlockSize, f.Layout())
			require.NoError(t, err)
			assert.Equal(t, blocks, repacked)
		})
	}
}

func TestFile_PayloadsMalformed(t *testing.T) {
	fixed := &File{Header: Header{BlockSize: 200, Encoding: codec.Fixed}, Body: bytes.Repeat([]byte("x"), 170)}
	_, err := fixed.Payloads()
	assert.ErrorIs(t, err, ErrMalformedBody)

	variable := &File{Header: Header{BlockSize: 200, Encoding: codec.Variable}, Body: append([]byte("a,b"), codec.EndOfRecord, 'c')}
	_, err = variable.Payloads()
	assert.ErrorIs(t, err, ErrMalformedBody)
}
