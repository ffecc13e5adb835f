// Package models provides the partial-ratio tables of the physical models a
// resonator can take on. Each table lists 64 frequency ratios normalized to
// the first entry.
package models

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// Name selects a physical model.
type Name int

const (
	String Name = iota
	Beam
	Squared
	Membrane
	Plate
	Drumhead
	Marimba
	OpenTube
	ClosedTube

	// NumModels is the number of selectable models.
	NumModels
)

// Size is the number of entries in a ratio table.
const Size = 64

// Table holds per-partial frequency ratios.
type Table [Size]float32

var names = [NumModels]string{
	"String", "Beam", "Squared", "Membrane", "Plate", "Drumhead", "Marimba", "OpenTube", "ClosedTube",
}

func (n Name) String() string {
	if n < 0 || n >= NumModels {
		return fmt.Sprintf("Name(%d)", int(n))
	}
	return names[n]
}

// IsWaveguide reports whether the model is rendered by a waveguide instead
// of a partial bank.
func (n Name) IsWaveguide() bool {
	return n >= OpenTube
}

// Clamp maps out-of-range values onto the nearest valid model.
func (n Name) Clamp() Name {
	if n < 0 {
		return String
	}
	if n >= NumModels {
		return ClosedTube
	}
	return n
}

// Parse resolves a model name, case-insensitively and ignoring spaces.
func Parse(s string) (Name, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for i, n := range names {
		if strings.ToLower(n) == key {
			return Name(i), nil
		}
	}
	return 0, fmt.Errorf("unknown model %q", s)
}

// DefaultRatio is the ratio a model's table is built with when the model is
// selected.
func DefaultRatio(n Name) float32 {
	if n == Beam {
		return 2.0
	}
	return 0.78
}

// Side selects the A or B table set.
type Side int

const (
	A Side = iota
	B
)

// Bank holds independent table sets for resonators A and B. The tables of
// Beam, Membrane and Plate depend on a ratio parameter and are recalculated
// per side. Reads are expected from the audio goroutine between recalcs, so
// callers serialize Recalc* with rendering.
type Bank struct {
	sides [2][NumModels]Table
}

var (
	defaultsOnce sync.Once
	defaults     [NumModels]Table
)

// NewBank returns a bank with every model at its default ratio.
func NewBank() *Bank {
	defaultsOnce.Do(buildDefaults)
	b := &Bank{}
	b.sides[A] = defaults
	b.sides[B] = defaults
	return b
}

// AModels returns the table set of resonator A.
func (b *Bank) AModels() *[NumModels]Table {
	return &b.sides[A]
}

// BModels returns the table set of resonator B.
func (b *Bank) BModels() *[NumModels]Table {
	return &b.sides[B]
}

// Table returns one table of one side.
func (b *Bank) Table(side Side, n Name) *Table {
	return &b.sides[side&1][n.Clamp()]
}

// Recalc rebuilds the ratio-dependent table of model n, if it has one.
func (b *Bank) Recalc(side Side, n Name, ratio float32) {
	switch n {
	case Beam:
		b.RecalcBeam(side, ratio)
	case Membrane:
		b.RecalcMembrane(side, ratio)
	case Plate:
		b.RecalcPlate(side, ratio)
	}
}

// RecalcBeam rebuilds the beam table: sqrt(m^4 + (ratio*beta_n)^4) over an
// 8x8 grid of bending (m) and free-free beam (n) modes.
func (b *Bank) RecalcBeam(side Side, ratio float32) {
	b.sides[side&1][Beam] = beamTable(float64(ratio))
}

// RecalcMembrane rebuilds the rectangular membrane table: sqrt(m^2 + (ratio*n)^2).
func (b *Bank) RecalcMembrane(side Side, ratio float32) {
	b.sides[side&1][Membrane] = membraneTable(float64(ratio))
}

// RecalcPlate rebuilds the plate table: m^2 + (ratio*n)^2.
func (b *Bank) RecalcPlate(side Side, ratio float32) {
	b.sides[side&1][Plate] = plateTable(float64(ratio))
}

// freeBeam holds free-free beam wavenumbers beta_n*L/pi for n = 1..8.
var freeBeam = [8]float64{1.50562, 2.49975, 3.50001, 4.5, 5.5, 6.5, 7.5, 8.5}

func beamTable(ratio float64) Table {
	var raw [Size]float64
	i := 0
	for m := 1; m <= 8; m++ {
		for n := 0; n < 8; n++ {
			mm := float64(m * m)
			rb := ratio * freeBeam[n]
			raw[i] = math.Sqrt(mm*mm + rb*rb*rb*rb)
			i++
		}
	}
	return normalize(raw)
}

func membraneTable(ratio float64) Table {
	var raw [Size]float64
	i := 0
	for m := 1; m <= 8; m++ {
		for n := 1; n <= 8; n++ {
			rn := ratio * float64(n)
			raw[i] = math.Sqrt(float64(m*m) + rn*rn)
			i++
		}
	}
	return normalize(raw)
}

func plateTable(ratio float64) Table {
	var raw [Size]float64
	i := 0
	for m := 1; m <= 8; m++ {
		for n := 1; n <= 8; n++ {
			rn := ratio * float64(n)
			raw[i] = float64(m*m) + rn*rn
			i++
		}
	}
	return normalize(raw)
}

// normalize divides every entry by the first one.
func normalize(raw [Size]float64) Table {
	var t Table
	f0 := raw[0]
	if f0 == 0 {
		f0 = 1
	}
	for i, v := range raw {
		t[i] = float32(v / f0)
	}
	return t
}

func buildDefaults() {
	var str, open, closed [Size]float64
	for i := range Size {
		str[i] = float64(i + 1)
		open[i] = float64(i + 1)
		closed[i] = float64(2*i + 1)
	}
	defaults[String] = normalize(str)
	defaults[Beam] = beamTable(float64(DefaultRatio(Beam)))
	defaults[Squared] = squareMembraneTable()
	defaults[Membrane] = membraneTable(float64(DefaultRatio(Membrane)))
	defaults[Plate] = plateTable(float64(DefaultRatio(Plate)))
	defaults[Drumhead] = circularMembraneTable()
	defaults[Marimba] = marimbaTable()
	defaults[OpenTube] = normalize(open)
	defaults[ClosedTube] = normalize(closed)
}

// marimbaTable follows a bar tuned 1:4:10, continuing with free-beam spacing
// above the third mode.
func marimbaTable() Table {
	var raw [Size]float64
	raw[0], raw[1], raw[2] = 1, 4, 10
	for i := 3; i < Size; i++ {
		n := float64(2*i+5) / 9
		raw[i] = 10 * n * n
	}
	return normalize(raw)
}
