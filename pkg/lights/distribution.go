package lights

import (
	"sort"
)

// Distribution1D is a piecewise-constant discrete distribution with a cumulative table
type Distribution1D struct {
	cdf []float64 // len(weights)+1, cdf[0] = 0, normalized so cdf[n] = 1
	sum float64
}

// NewDistribution1D builds a distribution from non-negative weights
func NewDistribution1D(weights []float64) *Distribution1D {
	cdf := make([]float64, len(weights)+1)
	for i, w := range weights {
		cdf[i+1] = cdf[i] + max(w, 0)
	}
	sum := cdf[len(weights)]
	if sum > 0 {
		for i := range cdf {
			cdf[i] /= sum
		}
	}
	return &Distribution1D{cdf: cdf, sum: sum}
}

// Count returns the number of entries
func (d *Distribution1D) Count() int { return len(d.cdf) - 1 }

// Sum returns the unnormalized total weight
func (d *Distribution1D) Sum() float64 { return d.sum }

// Pmf returns the probability of entry i
func (d *Distribution1D) Pmf(i int) float64 {
	if i < 0 || i >= d.Count() {
		return 0
	}
	return d.cdf[i+1] - d.cdf[i]
}

// Sample picks an entry by binary search over the cdf. It returns the index,
// its probability and the position of u within the chosen entry in [0, 1).
func (d *Distribution1D) Sample(u float64) (index int, pmf, remapped float64) {
	n := d.Count()
	if n == 0 || d.sum <= 0 {
		return 0, 0, u
	}
	index = sort.Search(n, func(i int) bool { return d.cdf[i+1] > u })
	index = min(index, n-1)
	// Skip zero-probability entries that share the boundary
	for index < n-1 && d.Pmf(index) == 0 {
		index++
	}
	pmf = d.Pmf(index)
	if pmf > 0 {
		remapped = min((u-d.cdf[index])/pmf, 1-1e-12)
		remapped = max(remapped, 0)
	}
	return index, pmf, remapped
}

// Distribution2D samples a rows × cols grid: first a row from the marginal, then a column
// from that row's conditional distribution
type Distribution2D struct {
	marginal    *Distribution1D
	conditional []*Distribution1D
}

// NewDistribution2D builds the marginal from row sums scaled by rowWeights (nil means 1)
func NewDistribution2D(weights []float64, rows, cols int, rowWeights []float64) *Distribution2D {
	d := &Distribution2D{conditional: make([]*Distribution1D, rows)}
	marginal := make([]float64, rows)
	for r := 0; r < rows; r++ {
		d.conditional[r] = NewDistribution1D(weights[r*cols : (r+1)*cols])
		marginal[r] = d.conditional[r].Sum()
		if rowWeights != nil {
			marginal[r] *= rowWeights[r]
		}
	}
	d.marginal = NewDistribution1D(marginal)
	return d
}

// Sample draws a cell and returns its row, column, probability and the in-cell offsets
func (d *Distribution2D) Sample(u, v float64) (row, col int, pmf, fu, fv float64) {
	row, pRow, fRow := d.marginal.Sample(u)
	if pRow <= 0 {
		return 0, 0, 0, 0, 0
	}
	col, pCol, fCol := d.conditional[row].Sample(v)
	return row, col, pRow * pCol, fRow, fCol
}

// Pmf returns the probability of a cell
func (d *Distribution2D) Pmf(row, col int) float64 {
	if row < 0 || row >= len(d.conditional) {
		return 0
	}
	return d.marginal.Pmf(row) * d.conditional[row].Pmf(col)
}
