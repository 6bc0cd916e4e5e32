package stat

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/BTBurke/dudect/pkg/metric"
)

// CellID identifies one cell of the grid by the index of its crop policy and its moment order
type CellID struct {
	Crop  int
	Order int
}

// Cell is a snapshot of the two accumulators for one (crop policy, moment order) pair
type Cell struct {
	ID     CellID
	Fixed  Accumulator
	Random Accumulator
}

// T returns the Welch t statistic of the cell
func (c Cell) T() (float64, error) {
	return WelchT(c.Fixed, c.Random)
}

// Samples returns the total number of values absorbed by the cell
func (c Cell) Samples() int {
	return c.Fixed.n + c.Random.n
}

// Max describes the cell with the largest |t|.  Defined is false when no cell has a defined t.
type Max struct {
	Cell    Cell
	T       float64
	AbsT    float64
	Defined bool
}

// Grid holds one pair of accumulators for every (crop policy, moment order) cell.  Accumulators are
// stored in a flat slice indexed by ((crop * orders) + order index) * 2 + class.  A grid is not safe
// for concurrent use.
type Grid struct {
	crops  int
	orders []int
	acc    []Accumulator
	// raw values per (crop, class), the running mean used to center higher moments
	center []Accumulator
}

// NewGrid returns an empty grid for crops crop policies and the given moment orders
func NewGrid(crops int, orders []int) (*Grid, error) {
	if crops <= 0 {
		return nil, errors.New("grid needs at least one crop policy")
	}
	if len(orders) == 0 {
		return nil, errors.New("grid needs at least one moment order")
	}
	for _, k := range orders {
		if k <= 0 {
			return nil, fmt.Errorf("moment order must be positive, got %d", k)
		}
	}
	return &Grid{
		crops:  crops,
		orders: append([]int(nil), orders...),
		acc:    make([]Accumulator, crops*len(orders)*2),
		center: make([]Accumulator, crops*2),
	}, nil
}

func (g *Grid) index(crop, order int, class Class) int {
	return (crop*len(g.orders)+order)*2 + int(class)
}

// Absorb adds a value of the given class that survived crop policy crop.  The value reaches every
// moment order of that policy.  Order 1 absorbs x unchanged.  Order k > 1 absorbs (x - m)^k where m
// is the running mean of the raw values of the same class and policy, x included.
func (g *Grid) Absorb(crop int, class Class, x float64) {
	c := &g.center[crop*2+int(class)]
	c.Add(x)
	for i, k := range g.orders {
		g.acc[g.index(crop, i, class)].Add(Moment(x, c.mean, k))
	}
}

// Moment transforms a raw value for a test of order k
func Moment(x, mean float64, k int) float64 {
	switch k {
	case 1:
		return x
	case 2:
		d := x - mean
		return d * d
	default:
		return math.Pow(x-mean, float64(k))
	}
}

// Cell returns a snapshot of the cell for crop policy index crop and order index order
func (g *Grid) Cell(crop, order int) Cell {
	return Cell{
		ID:     CellID{Crop: crop, Order: g.orders[order]},
		Fixed:  g.acc[g.index(crop, order, Fixed)],
		Random: g.acc[g.index(crop, order, Random)],
	}
}

// Cells returns snapshots of every cell in grid order
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, g.crops*len(g.orders))
	for p := 0; p < g.crops; p++ {
		for i := range g.orders {
			out = append(out, g.Cell(p, i))
		}
	}
	return out
}

// Max returns the cell with the largest |t| among cells with a defined t.  Cells whose moments
// overflowed are undefined and never win.  Ties keep the first cell in grid order.
func (g *Grid) Max() Max {
	var max Max
	for _, c := range g.Cells() {
		t, err := c.T()
		if err != nil {
			continue
		}
		if !max.Defined || math.Abs(t) > max.AbsT {
			max = Max{Cell: c, T: t, AbsT: math.Abs(t), Defined: true}
		}
	}
	return max
}

// Reset discards every accumulated value
func (g *Grid) Reset() {
	for i := range g.acc {
		g.acc[i] = Accumulator{}
	}
	for i := range g.center {
		g.center[i] = Accumulator{}
	}
}

// Metric returns the t value of every defined cell keyed by its name, for example
// dudect_t[crop=p50 order=2].  cropNames labels the crop policies by index.
func (g *Grid) Metric(cropNames []string) map[string]float64 {
	out := make(map[string]float64)
	for _, c := range g.Cells() {
		t, err := c.T()
		if err != nil {
			continue
		}
		out[CellName(c.ID, cropNames).String()] = t
	}
	return out
}

// CellName names a cell for reporting
func CellName(id CellID, cropNames []string) metric.Name {
	crop := strconv.Itoa(id.Crop)
	if id.Crop < len(cropNames) {
		crop = cropNames[id.Crop]
	}
	return metric.NewName("dudect_t", map[string]string{
		"crop":  crop,
		"order": strconv.Itoa(id.Order),
	})
}
