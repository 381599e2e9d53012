// Package lexicon chooses the category and word pair of a round.
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

//go:embed data/words.json
var defaultBankJSON []byte

// WordPair is a secret word plus the hints an impostor may receive.
type WordPair struct {
	Word  string   `json:"word"`
	Hints []string `json:"hints"`
}

// Bank is the static content database the lexicon queries.
type Bank interface {
	// Categories returns every category name in a stable order.
	Categories() []string
	// Words returns the word pairs of a category, or nil if it is unknown.
	Words(category string) []WordPair
}

// StaticBank is an in-memory Bank.
type StaticBank struct {
	categories map[string][]WordPair
	order      []string
}

type bankFile struct {
	Categories map[string][]WordPair `json:"categories"`
}

// NewStaticBank builds a bank from a category map. Empty categories are dropped.
func NewStaticBank(categories map[string][]WordPair) *StaticBank {
	b := &StaticBank{categories: make(map[string][]WordPair, len(categories))}
	for name, words := range categories {
		if len(words) == 0 {
			continue
		}
		b.categories[name] = words
		b.order = append(b.order, name)
	}
	sort.Strings(b.order)
	return b
}

// LoadBank decodes a JSON word bank of the form {"categories": {"name": [{"word", "hints"}]}}.
func LoadBank(r io.Reader) (*StaticBank, error) {
	var f bankFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode word bank: %w", err)
	}
	return NewStaticBank(f.Categories), nil
}

// LoadBankFile reads a JSON word bank from disk.
func LoadBankFile(path string) (*StaticBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word bank: %w", err)
	}
	defer f.Close()
	return LoadBank(f)
}

// DefaultBank returns the bank embedded in the binary.
func DefaultBank() *StaticBank {
	var f bankFile
	if err := json.Unmarshal(defaultBankJSON, &f); err != nil {
		panic("lexicon: embedded word bank is invalid: " + err.Error())
	}
	return NewStaticBank(f.Categories)
}

func (b *StaticBank) Categories() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

func (b *StaticBank) Words(category string) []WordPair {
	return b.categories[category]
}
