// Package generator produces synthetic student records for packing runs.
package generator

import (
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/btree"

	"github.com/ssargent/blockfile/pkg/codec"
)

const (
	minID   = 100000000
	maxID   = 999999999
	minYear = 2000
	maxYear = 2025

	nameWidth   = 50
	parentWidth = 30
	courseWidth = 30
)

// Generator creates records with unique IDs and CPFs. It is not safe for
// concurrent use.
type Generator struct {
	faker *gofakeit.Faker
	ids   *btree.BTreeG[int64]
	cpfs  *btree.BTreeG[string]
}

// New creates a generator. A zero seed picks a random one.
func New(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		ids: btree.NewG[int64](2, func(a, b int64) bool {
			return a < b
		}),
		cpfs: btree.NewG[string](2, func(a, b string) bool {
			return a < b
		}),
	}
}

// Generate returns n new records
func (g *Generator) Generate(n int) []codec.Record {
	records := make([]codec.Record, n)
	for i := range records {
		records[i] = g.Next()
	}
	return records
}

// Next returns one new record
func (g *Generator) Next() codec.Record {
	return codec.Record{
		ID:             g.nextID(),
		Name:           cleanName(g.faker.Name(), nameWidth),
		CPF:            g.nextCPF(),
		Course:         truncate(g.faker.RandomString(codec.Courses), courseWidth),
		MotherName:     cleanName(g.faker.FirstName()+" "+g.faker.LastName(), parentWidth),
		FatherName:     cleanName(g.faker.FirstName()+" "+g.faker.LastName(), parentWidth),
		EnrollmentYear: g.faker.Number(minYear, maxYear),
		GPA:            math.Round(g.faker.Float64Range(0, 10)*100) / 100,
	}
}

// Issued returns how many records the generator has produced
func (g *Generator) Issued() int {
	return g.ids.Len()
}

func (g *Generator) nextID() int64 {
	for {
		id := int64(g.faker.Number(minID, maxID))
		if _, found := g.ids.ReplaceOrInsert(id); !found {
			return id
		}
	}
}

func (g *Generator) nextCPF() string {
	for {
		cpf := newCPF(g.faker.Numerify("#########"))
		if cpf == "" {
			continue
		}
		if _, found := g.cpfs.ReplaceOrInsert(cpf); !found {
			return cpf
		}
	}
}

// newCPF appends the two check digits to a 9-digit base. Bases made of one
// repeated digit are not valid CPFs and yield "".
func newCPF(base string) string {
	if strings.Count(base, base[:1]) == len(base) {
		return ""
	}
	digits := base + string(cpfDigit(base))
	return digits + string(cpfDigit(digits))
}

// ValidCPF reports whether cpf is 11 digits with correct check digits
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 || strings.Trim(cpf, "0123456789") != "" {
		return false
	}
	return newCPF(cpf[:9]) == cpf
}

func cpfDigit(digits string) byte {
	sum := 0
	weight := len(digits) + 1
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

// cleanName keeps the runes that survive Latin-1, drops separators and
// reserved bytes, and truncates to width characters.
func cleanName(s string, width int) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', 'þ', 'ÿ':
			return -1
		}
		return r
	}, codec.Latin1(s))
	return truncate(s, width)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
