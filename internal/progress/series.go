package progress

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBadWeight signals that a stored weight value cannot be read as a
// number, which means the workout data itself is corrupted.
var ErrBadWeight = errors.New("stored weight is not a number")

const dateLabelLayout = "2006-01-02"

// BuildSeries converts raw points into a chart-ready series. Weights are
// stored as text and parsed here, a value that fails to parse aborts the
// whole series with ErrBadWeight.
func BuildSeries(points []Point) (*Series, error) {
	series := &Series{
		Labels:  make([]string, 0, len(points)),
		Weights: make([]float64, 0, len(points)),
	}
	for _, point := range points {
		weight, err := strconv.ParseFloat(point.Weight, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadWeight, point.Weight)
		}
		series.Labels = append(series.Labels, point.Date.Format(dateLabelLayout))
		series.Weights = append(series.Weights, weight)
	}
	return series, nil
}
