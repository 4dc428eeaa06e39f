// Package lich converts Gregorian dates into sexagenary (Can Chi) labels and
// an approximate lunar date, and scores zodiac compatibility between a
// querent's birth year and a target day.
//
// Every function in this package is pure: no I/O, no mutable state. The
// lookup tables are fixed-size arrays indexed by Can or Chi, so a missing
// key cannot occur. Tables are exposed through accessors returning copies.
package lich

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-lich/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidChi is returned by ParseChi for names outside the 12 branches.
var ErrInvalidChi = errors.New(config.ErrInvalidChi)

// Can is one of the 10 heavenly stems.
type Can int

const (
	Giap Can = iota
	At
	Binh
	Dinh
	Mau
	Ky
	Canh
	Tan
	Nham
	Quy
)

// Chi is one of the 12 earthly branches, named after its zodiac animal.
type Chi int

const (
	Rat     Chi = iota // Tý
	Ox                 // Sửu
	Tiger              // Dần
	Cat                // Mão
	Dragon             // Thìn
	Snake              // Tỵ
	Horse              // Ngọ
	Goat               // Mùi
	Monkey             // Thân
	Rooster            // Dậu
	Dog                // Tuất
	Pig                // Hợi
)

const (
	canCount = 10
	chiCount = 12
)

var canNames = [canCount]string{"Giáp", "Ất", "Bính", "Đinh", "Mậu", "Kỷ", "Canh", "Tân", "Nhâm", "Quý"}

var chiNames = [chiCount]string{"Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi", "Thân", "Dậu", "Tuất", "Hợi"}

// hourNames are positionally aligned with chiNames.
var hourNames = [chiCount]string{"Tý", "Sửu", "Dần", "Mão", "Thìn", "Tỵ", "Ngọ", "Mùi", "Thân", "Dậu", "Tuất", "Hợi"}

var hourWindows = [chiCount]string{
	"23h-01h", "01h-03h", "03h-05h", "05h-07h", "07h-09h", "09h-11h",
	"11h-13h", "13h-15h", "15h-17h", "17h-19h", "19h-21h", "21h-23h",
}

// hoangDao maps a day branch to its 6 favorable hour branches.
var hoangDao = [chiCount][6]Chi{
	Rat:     {Tiger, Cat, Snake, Monkey, Dog, Pig},
	Ox:      {Cat, Dragon, Horse, Rooster, Pig, Rat},
	Tiger:   {Dragon, Snake, Goat, Dog, Rat, Ox},
	Cat:     {Snake, Horse, Monkey, Pig, Ox, Tiger},
	Dragon:  {Horse, Goat, Rooster, Rat, Tiger, Cat},
	Snake:   {Goat, Monkey, Dog, Ox, Cat, Dragon},
	Horse:   {Monkey, Rooster, Pig, Tiger, Dragon, Snake},
	Goat:    {Rooster, Dog, Rat, Cat, Snake, Horse},
	Monkey:  {Dog, Pig, Ox, Dragon, Horse, Goat},
	Rooster: {Pig, Rat, Tiger, Snake, Goat, Monkey},
	Dog:     {Rat, Ox, Cat, Horse, Monkey, Rooster},
	Pig:     {Ox, Tiger, Dragon, Goat, Rooster, Dog},
}

// tamHop maps a branch to the two other members of its triad.
var tamHop = [chiCount][2]Chi{
	Rat:     {Monkey, Dragon},
	Ox:      {Snake, Rooster},
	Tiger:   {Horse, Dog},
	Cat:     {Pig, Goat},
	Dragon:  {Monkey, Rat},
	Snake:   {Rooster, Ox},
	Horse:   {Tiger, Dog},
	Goat:    {Pig, Cat},
	Monkey:  {Rat, Dragon},
	Rooster: {Snake, Ox},
	Dog:     {Tiger, Horse},
	Pig:     {Cat, Goat},
}

// lucXung maps a branch to the branch six positions away.
var lucXung = [chiCount]Chi{
	Rat:     Horse,
	Ox:      Goat,
	Tiger:   Monkey,
	Cat:     Rooster,
	Dragon:  Dog,
	Snake:   Pig,
	Horse:   Rat,
	Goat:    Ox,
	Monkey:  Tiger,
	Rooster: Cat,
	Dog:     Dragon,
	Pig:     Snake,
}

// hoangDaoDays are the day branches flagged as auspicious days.
var hoangDaoDays = [chiCount]bool{
	Rat: true, Tiger: true, Cat: true, Horse: true, Goat: true, Rooster: true,
}

// CanNames returns the 10 stem names in cycle order.
func CanNames() [canCount]string { return canNames }

// ChiNames returns the 12 branch names in cycle order.
func ChiNames() [chiCount]string { return chiNames }

// HourNames returns the 12 double-hour names, aligned with ChiNames.
func HourNames() [chiCount]string { return hourNames }

// HourWindows returns the 12 two-hour windows, starting at 23h for Tý.
func HourWindows() [chiCount]string { return hourWindows }

// HoangDaoTable returns the favorable hour branches for every day branch.
func HoangDaoTable() [chiCount][6]Chi { return hoangDao }

// TamHopTable returns the triad allies of every branch.
func TamHopTable() [chiCount][2]Chi { return tamHop }

// LucXungTable returns the opposing branch of every branch.
func LucXungTable() [chiCount]Chi { return lucXung }

// CanOf returns the stem at cyclic position n (any integer).
func CanOf(n int) Can { return Can(floorMod(n, canCount)) }

// ChiOf returns the branch at cyclic position n (any integer).
func ChiOf(n int) Chi { return Chi(floorMod(n, chiCount)) }

func (c Can) String() string { return canNames[floorMod(int(c), canCount)] }

func (c Chi) String() string { return chiNames[floorMod(int(c), chiCount)] }

// MarshalText encodes the stem as its Vietnamese name.
func (c Can) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// MarshalText encodes the branch as its Vietnamese name.
func (c Chi) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts any spelling ParseChi accepts.
func (c *Chi) UnmarshalText(b []byte) error {
	v, err := ParseChi(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseChi resolves a branch name. Input is NFC-normalized and case-folded,
// so decomposed or upper-case spellings ("THÌN") are accepted.
func ParseChi(name string) (Chi, error) {
	want := foldName(name)
	for i, n := range chiNames {
		if foldName(n) == want {
			return Chi(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChi, name)
}

func foldName(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Pair is a stem/branch combination of the sexagenary cycle.
type Pair struct {
	Can Can
	Chi Chi
}

// String renders the pair as "<Can> <Chi>", e.g. "Giáp Tý".
func (p Pair) String() string { return p.Can.String() + " " + p.Chi.String() }

// MarshalText encodes the pair as its display label.
func (p Pair) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// floorMod is the Euclidean remainder, always in [0, m).
func floorMod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// floorDiv rounds toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
