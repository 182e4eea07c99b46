package features

import "math"

// numericColumns are the columns that take part in the outlier z-score.
const numericColumns = ColIsOutlier

// ColumnStats is the population mean and sample standard deviation of one
// column. NaN values are skipped, as a dataframe would.
type ColumnStats struct {
	Mean float64
	Std  float64
}

// PreprocessBatch derives every row the same way as Preprocess and then sets
// is_outlier from population statistics: a row is flagged when the absolute
// z-score of any of its six numeric columns exceeds OutlierZScore. Rows are
// never dropped, so the output is aligned 1:1 with the input.
func PreprocessBatch(rows []Measurements) []Vector {
	vectors := make([]Vector, len(rows))
	for i, m := range rows {
		vectors[i] = Derive(m)
	}

	if len(vectors) == 0 {
		return vectors
	}

	stats := Stats(vectors)
	for i := range vectors {
		if isOutlier(vectors[i], stats) {
			vectors[i][ColIsOutlier] = 1
		}
	}

	return vectors
}

// Stats computes ColumnStats for the six numeric columns. A standard
// deviation of exactly zero is replaced by Epsilon. With fewer than two
// values the deviation is undefined and left as NaN.
func Stats(vectors []Vector) [numericColumns]ColumnStats {
	var stats [numericColumns]ColumnStats

	for col := 0; col < numericColumns; col++ {
		var sum float64
		var n int
		for _, v := range vectors {
			if math.IsNaN(v[col]) {
				continue
			}
			sum += v[col]
			n++
		}

		if n == 0 {
			stats[col] = ColumnStats{Mean: math.NaN(), Std: math.NaN()}
			continue
		}

		mean := sum / float64(n)

		std := math.NaN()
		if n > 1 {
			var sq float64
			for _, v := range vectors {
				if math.IsNaN(v[col]) {
					continue
				}
				d := v[col] - mean
				sq += d * d
			}
			std = math.Sqrt(sq / float64(n-1))
			if std == 0 {
				std = Epsilon
			}
		}

		stats[col] = ColumnStats{Mean: mean, Std: std}
	}

	return stats
}

func isOutlier(v Vector, stats [numericColumns]ColumnStats) bool {
	for col := 0; col < numericColumns; col++ {
		z := math.Abs((v[col] - stats[col].Mean) / stats[col].Std)
		// NaN compares false, so holes never flag a row.
		if z > OutlierZScore {
			return true
		}
	}
	return false
}

// CountOutliers returns how many vectors carry is_outlier = 1.
func CountOutliers(vectors []Vector) int {
	var n int
	for _, v := range vectors {
		if v[ColIsOutlier] == 1 {
			n++
		}
	}
	return n
}
