package demo

import "math"

// Indicator series are aligned to the input length with NaN for warm-up
// rows, which serialize as null to match the real service.

func sma(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i < p-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= p {
			sum -= x[i-p]
		}
		out[i] = sum / float64(p)
	}
	return out
}

func ema(x []float64, p int) []float64 {
	if p <= 0 {
		return nil
	}
	out := make([]float64, len(x))
	if len(x) < p {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	k := 2.0 / float64(p+1)

	// seed with SMA(p)
	var seed float64
	for i := 0; i < p; i++ {
		seed += x[i]
		if i < p-1 {
			out[i] = math.NaN()
		}
	}
	out[p-1] = seed / float64(p)
	for i := p; i < len(x); i++ {
		out[i] = (x[i]-out[i-1])*k + out[i-1]
	}
	return out
}

func rsi(close []float64, p int) []float64 {
	out := make([]float64, len(close))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(close) <= p {
		return out
	}

	var gain, loss float64
	for i := 1; i <= p; i++ {
		d := close[i] - close[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(p)
	avgLoss := loss / float64(p)

	rs := func() float64 {
		if avgLoss == 0 {
			return 100
		}
		return 100 - 100/(1+avgGain/avgLoss)
	}
	out[p] = rs()
	for i := p + 1; i < len(close); i++ {
		d := close[i] - close[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(p-1) + g) / float64(p)
		avgLoss = (avgLoss*float64(p-1) + l) / float64(p)
		out[i] = rs()
	}
	return out
}

func atr(bars []bar, p int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(bars) <= p {
		return out
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	var sum float64
	for i := 0; i < p; i++ {
		sum += tr[i]
	}
	out[p-1] = sum / float64(p)
	for i := p; i < len(bars); i++ {
		out[i] = (out[i-1]*float64(p-1) + tr[i]) / float64(p)
	}
	return out
}

func cci(bars []bar, p int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(bars) < p {
		return out
	}

	tp := make([]float64, len(bars))
	for i, b := range bars {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}
	for i := p - 1; i < len(bars); i++ {
		var sum float64
		for j := i - p + 1; j <= i; j++ {
			sum += tp[j]
		}
		mean := sum / float64(p)
		var dev float64
		for j := i - p + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - mean)
		}
		dev /= float64(p)
		if dev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean) / (0.015 * dev)
	}
	return out
}

func cmf(bars []bar, p int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(bars) < p {
		return out
	}

	mfv := make([]float64, len(bars))
	vol := make([]float64, len(bars))
	for i, b := range bars {
		vol[i] = b.Volume
		if b.High == b.Low {
			continue
		}
		mult := ((b.Close - b.Low) - (b.High - b.Close)) / (b.High - b.Low)
		mfv[i] = mult * b.Volume
	}
	for i := p - 1; i < len(bars); i++ {
		var sumMFV, sumVol float64
		for j := i - p + 1; j <= i; j++ {
			sumMFV += mfv[j]
			sumVol += vol[j]
		}
		if sumVol == 0 {
			out[i] = 0
			continue
		}
		out[i] = sumMFV / sumVol
	}
	return out
}

func williamsR(bars []bar, p int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	if p <= 0 || len(bars) < p {
		return out
	}

	for i := p - 1; i < len(bars); i++ {
		hi, lo := bars[i].High, bars[i].Low
		for j := i - p + 1; j <= i; j++ {
			hi = math.Max(hi, bars[j].High)
			lo = math.Min(lo, bars[j].Low)
		}
		if hi == lo {
			out[i] = 0
			continue
		}
		out[i] = (hi - bars[i].Close) / (hi - lo) * -100
	}
	return out
}
