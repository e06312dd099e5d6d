package fitsio

import (
	"fmt"
	"strconv"
	"strings"
)

// A Card is one 80-byte FITS header record: keyword, raw value text, and
// an optional comment. Values are kept as the raw strings that appear on
// the wire so a header can round-trip without loss; typed access goes
// through the getters on Header.
type Card struct {
	Key     string
	Value   string
	Comment string
}

// A Header is an ordered list of cards with case-insensitive keyword
// lookup. Order matters when writing, so provenance cards stay where the
// original instrument pipeline put them.
type Header struct {
	cards []Card
	index map[string]int
}

func NewHeader() *Header {
	return &Header{index: map[string]int{}}
}

func (h *Header) Copy() *Header {
	h2 := NewHeader()
	for _, c := range h.cards {
		h2.append(c)
	}
	return h2
}

func (h *Header) Cards() []Card { return h.cards }

func (h *Header) append(c Card) {
	c.Key = strings.ToUpper(strings.TrimSpace(c.Key))
	if i, ok := h.index[c.Key]; ok && c.Key != "HISTORY" && c.Key != "COMMENT" && c.Key != "" {
		h.cards[i] = c
		return
	}
	if c.Key != "HISTORY" && c.Key != "COMMENT" && c.Key != "" {
		h.index[c.Key] = len(h.cards)
	}
	h.cards = append(h.cards, c)
}

// Set stores a raw (already formatted) value for key, replacing any
// existing card with that key.
func (h *Header) Set(key, value, comment string) {
	h.append(Card{Key: key, Value: value, Comment: comment})
}

func (h *Header) SetFloat(key string, v float64, comment string) {
	h.Set(key, strconv.FormatFloat(v, 'G', -1, 64), comment)
}

func (h *Header) SetInt(key string, v int, comment string) {
	h.Set(key, strconv.Itoa(v), comment)
}

func (h *Header) SetBool(key string, v bool, comment string) {
	s := "F"
	if v {
		s = "T"
	}
	h.Set(key, s, comment)
}

func (h *Header) SetString(key, v, comment string) {
	h.Set(key, fmt.Sprintf("'%s'", v), comment)
}

// AddHistory appends a HISTORY card. HISTORY cards accumulate rather than
// replace each other.
func (h *Header) AddHistory(note string) {
	h.cards = append(h.cards, Card{Key: "HISTORY", Comment: note})
}

func (h *Header) Get(key string) (string, bool) {
	i, ok := h.index[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return "", false
	}
	return h.cards[i].Value, true
}

func (h *Header) Float(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (h *Header) Int(key string) (int, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

// Str returns the value of a string-typed card with the FITS quoting and
// trailing padding stripped, or "" when absent.
func (h *Header) Str(key string) string {
	v, ok := h.Get(key)
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "'") {
		if end := strings.LastIndex(v, "'"); end > 0 {
			return strings.TrimRight(v[1:end], " ")
		}
		v = strings.TrimLeft(v, "'")
	}
	return v
}
