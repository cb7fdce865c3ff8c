package features

// Trend holds the coefficients of a least-squares line y = Intercept + Slope*x.
type Trend struct {
	Intercept float64
	Slope     float64
}

// At evaluates the line at x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// FitTrend computes an ordinary least-squares fit over the points (i, ys[i]),
// i = 0..n-1. With fewer than two points the denominator vanishes; the fit is
// then flat at the mean of ys.
func FitTrend(ys []float64) Trend {
	n := float64(len(ys))
	if len(ys) <= 1 {
		return Trend{Intercept: Mean(ys)}
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return Trend{Intercept: Mean(ys)}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return Trend{
		Intercept: (sumY - slope*sumX) / n,
		Slope:     slope,
	}
}
