package progress

import "time"

// Point is a single recorded instance of one exercise on one workout date.
// Weight stays in its raw stored form here, conversion to a number happens
// when a series is assembled for charting.
type Point struct {
	Date   time.Time
	Weight string
	Sets   int
	Reps   int
}

// Series is the chart-ready shape of one exercise's progress, dates and
// weights aligned by index.
type Series struct {
	Labels  []string  `json:"labels"`
	Weights []float64 `json:"weights"`
}
