package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// RecordSize is the length of every payload in Fixed encoding.
	RecordSize = 169

	// EndOfRecord terminates every payload in Variable encoding.
	EndOfRecord byte = 0xFE

	// ContinuationMarker is reserved for the block packer. It may not appear
	// inside a variable payload.
	ContinuationMarker byte = 0xFF

	fillByte  = '#'
	fieldSep  = ','
	padByte   = ' '
	numFields = 8
)

var (
	// ErrInvalidField is returned when a field cannot be represented in the
	// selected encoding.
	ErrInvalidField = errors.New("invalid record field")

	// ErrMalformedPayload is returned when a payload cannot be decoded.
	ErrMalformedPayload = errors.New("malformed record payload")
)

// EncodingMode selects how a record is rendered into bytes
type EncodingMode int

const (
	// Fixed renders every field into a reserved column
	Fixed EncodingMode = iota + 1
	// Variable renders comma-joined text followed by EndOfRecord
	Variable
)

// String returns the lowercase name of the mode
func (m EncodingMode) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Variable:
		return "variable"
	default:
		return fmt.Sprintf("EncodingMode(%d)", int(m))
	}
}

// Code returns the numeric code written in container headers.
func (m EncodingMode) Code() int {
	return int(m)
}

// ModeFromCode maps a container header code back to an EncodingMode
func ModeFromCode(code int) (EncodingMode, error) {
	switch EncodingMode(code) {
	case Fixed, Variable:
		return EncodingMode(code), nil
	default:
		return 0, fmt.Errorf("unknown encoding mode code %d", code)
	}
}

// Record is one student as produced by the generator
type Record struct {
	ID             int64   // 9-digit enrollment number
	Name           string  // Full name
	CPF            string  // 11-digit national identifier
	Course         string  // One of Courses
	MotherName     string  // Mother's name
	FatherName     string  // Father's name
	EnrollmentYear int     // 4-digit year
	GPA            float64 // Grade point average in [0, 10]
}

// Courses lists the programs a student can be enrolled in
var Courses = []string{
	"Engenharia da Computação",
	"Engenharia Elétrica",
	"Engenharia de Produção",
	"Sistemas de Informação",
}

// Validate checks the field ranges the generator guarantees. EncodeAll
// rejects records that fail it.
func (r *Record) Validate() error {
	if r.ID < 100000000 || r.ID > 999999999 {
		return fmt.Errorf("%w: id %d is not a 9-digit number", ErrInvalidField, r.ID)
	}
	if len(r.CPF) != 11 || strings.Trim(r.CPF, "0123456789") != "" {
		return fmt.Errorf("%w: cpf %q is not 11 digits", ErrInvalidField, r.CPF)
	}
	if r.EnrollmentYear < 1000 || r.EnrollmentYear > 9999 {
		return fmt.Errorf("%w: year %d is not 4 digits", ErrInvalidField, r.EnrollmentYear)
	}
	if math.IsNaN(r.GPA) || r.GPA < 0 || r.GPA > 10 {
		return fmt.Errorf("%w: gpa %v out of range", ErrInvalidField, r.GPA)
	}
	return nil
}

// Column is one entry of the fixed-width layout
type Column struct {
	Name  string
	Width int
}

// FixedLayout is the column table used by Fixed encoding, in field order.
var FixedLayout = []Column{
	{Name: "id", Width: 9},
	{Name: "name", Width: 50},
	{Name: "cpf", Width: 11},
	{Name: "course", Width: 30},
	{Name: "mother_name", Width: 30},
	{Name: "father_name", Width: 30},
	{Name: "enrollment_year", Width: 4},
	{Name: "gpa", Width: 5},
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct {
	mode EncodingMode
}

// NewRecordCodec creates a codec for the given encoding mode
func NewRecordCodec(mode EncodingMode) *RecordCodec {
	return &RecordCodec{mode: mode}
}

// Mode returns the encoding mode of the codec
func (c *RecordCodec) Mode() EncodingMode {
	return c.mode
}

// Encode serializes a record into its payload
func (c *RecordCodec) Encode(r Record) ([]byte, error) {
	switch c.mode {
	case Fixed:
		return encodeFixed(r), nil
	case Variable:
		return encodeVariable(r)
	default:
		return nil, fmt.Errorf("unsupported encoding mode: %s", c.mode)
	}
}

// Decode parses a payload produced by Encode
func (c *RecordCodec) Decode(data []byte) (Record, error) {
	switch c.mode {
	case Fixed:
		return decodeFixed(data)
	case Variable:
		return decodeVariable(data)
	default:
		return Record{}, fmt.Errorf("unsupported encoding mode: %s", c.mode)
	}
}

// UsefulBytes returns how many bytes of payload carry record data. Fixed
// payloads count in full; variable payloads exclude the end-of-record byte.
func (c *RecordCodec) UsefulBytes(payload []byte) int {
	if c.mode == Variable && len(payload) > 0 {
		return len(payload) - 1
	}
	return len(payload)
}

func encodeFixed(r Record) []byte {
	buf := make([]byte, 0, RecordSize)
	for i, text := range fixedFields(r) {
		buf = appendColumn(buf, latin1Bytes(text), FixedLayout[i].Width)
	}
	for len(buf) < RecordSize {
		buf = append(buf, fillByte)
	}
	return buf[:RecordSize]
}

// appendColumn left-justifies value in a column of the given width
func appendColumn(buf, value []byte, width int) []byte {
	if len(value) > width {
		value = value[:width]
	}
	buf = append(buf, value...)
	for i := len(value); i < width; i++ {
		buf = append(buf, padByte)
	}
	return buf
}

func encodeVariable(r Record) ([]byte, error) {
	fields := textFields(r)
	var buf bytes.Buffer
	for i, text := range fields {
		b := latin1Bytes(text)
		if bytes.IndexByte(b, fieldSep) >= 0 ||
			bytes.IndexByte(b, EndOfRecord) >= 0 ||
			bytes.IndexByte(b, ContinuationMarker) >= 0 {
			return nil, fmt.Errorf("%w: %s contains a separator or reserved byte", ErrInvalidField, FixedLayout[i].Name)
		}
		if i > 0 {
			buf.WriteByte(fieldSep)
		}
		buf.Write(b)
	}
	buf.WriteByte(EndOfRecord)
	return buf.Bytes(), nil
}

// fixedFields renders the fields for Fixed encoding, in layout order
func fixedFields(r Record) []string {
	f := textFields(r)
	f[7] = strconv.FormatFloat(r.GPA, 'f', 2, 64)
	return f
}

// textFields renders the natural text form of every field, in layout order
func textFields(r Record) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.CPF,
		r.Course,
		r.MotherName,
		r.FatherName,
		strconv.Itoa(r.EnrollmentYear),
		formatDecimal(r.GPA),
	}
}

// formatDecimal prints the shortest representation of v that always carries
// a fractional part: 7.5, 10.0, 0.25.
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func decodeFixed(data []byte) (Record, error) {
	if len(data) != RecordSize {
		return Record{}, fmt.Errorf("%w: fixed payload is %d bytes, want %d", ErrMalformedPayload, len(data), RecordSize)
	}

	fields := make([]string, 0, numFields)
	offset := 0
	for _, col := range FixedLayout {
		raw := bytes.TrimRight(data[offset:offset+col.Width], string(padByte))
		fields = append(fields, latin1String(raw))
		offset += col.Width
	}
	return parseFields(fields)
}

func decodeVariable(data []byte) (Record, error) {
	if len(data) == 0 || data[len(data)-1] != EndOfRecord {
		return Record{}, fmt.Errorf("%w: missing end-of-record marker", ErrMalformedPayload)
	}

	parts := bytes.Split(data[:len(data)-1], []byte{fieldSep})
	if len(parts) != numFields {
		return Record{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformedPayload, len(parts), numFields)
	}

	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = latin1String(p)
	}
	return parseFields(fields)
}

func parseFields(f []string) (Record, error) {
	id, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: id: %v", ErrMalformedPayload, err)
	}
	year, err := strconv.Atoi(f[6])
	if err != nil {
		return Record{}, fmt.Errorf("%w: enrollment year: %v", ErrMalformedPayload, err)
	}
	gpa, err := strconv.ParseFloat(f[7], 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: gpa: %v", ErrMalformedPayload, err)
	}

	return Record{
		ID:             id,
		Name:           f[1],
		CPF:            f[2],
		Course:         f[3],
		MotherName:     f[4],
		FatherName:     f[5],
		EnrollmentYear: year,
		GPA:            gpa,
	}, nil
}
