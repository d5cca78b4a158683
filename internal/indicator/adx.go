package indicator

import "SignalPulse/internal/domain/models"

// DefaultADXPeriod is the standard Wilder ADX lookback.
const DefaultADXPeriod = 14

// ADX computes the Average Directional Index with +DI/-DI components.
// True range and directional movement are smoothed as Wilder running sums,
// seeded by the simple sum of the first period values and decayed by
// sm = sm - sm/period + value; the division by the period happens only when
// +DI/-DI are derived. The DX series is averaged with Wilder's recurrence
// when at least 2*period bars of DX exist, and as a simple average
// otherwise. All outputs are in [0, 100]; the zero-range default is 0.
func ADX(cs []models.Candle, period int) models.DirectionalIndex {
	if period <= 0 || len(cs) < period+1 {
		return models.DirectionalIndex{}
	}

	n := len(cs) - 1
	tr := make([]float64, n)
	pdm := make([]float64, n)
	ndm := make([]float64, n)
	for i := 1; i < len(cs); i++ {
		tr[i-1] = cs[i].TrueRange(cs[i-1].Close)
		up := cs[i].High - cs[i-1].High
		down := cs[i-1].Low - cs[i].Low
		if up > down && up > 0 {
			pdm[i-1] = up
		}
		if down > up && down > 0 {
			ndm[i-1] = down
		}
	}

	var smTR, smPDM, smNDM float64
	for i := 0; i < period; i++ {
		smTR += tr[i]
		smPDM += pdm[i]
		smNDM += ndm[i]
	}

	p := float64(period)
	dx := make([]float64, 0, n-period+1)
	dx = append(dx, dxValue(smPDM, smNDM, smTR))
	for i := period; i < n; i++ {
		smTR = smTR - smTR/p + tr[i]
		smPDM = smPDM - smPDM/p + pdm[i]
		smNDM = smNDM - smNDM/p + ndm[i]
		dx = append(dx, dxValue(smPDM, smNDM, smTR))
	}

	var adx float64
	if len(dx) >= 2*period {
		sum := 0.0
		for i := 0; i < period; i++ {
			sum += dx[i]
		}
		adx = sum / p
		for i := period; i < len(dx); i++ {
			adx = (adx*(p-1) + dx[i]) / p
		}
	} else {
		sum := 0.0
		for _, v := range dx {
			sum += v
		}
		adx = sum / float64(len(dx))
	}

	pdi, ndi := 0.0, 0.0
	if smTR != 0 {
		pdi = smPDM / smTR * 100
		ndi = smNDM / smTR * 100
	}
	return models.DirectionalIndex{
		ADX:     clamp(adx, 0, 100),
		PlusDI:  clamp(pdi, 0, 100),
		MinusDI: clamp(ndi, 0, 100),
	}
}

// dxValue derives DX = |+DI - -DI| / (+DI + -DI) * 100 with zero-denominator
// guards substituting 0.
func dxValue(smPDM, smNDM, smTR float64) float64 {
	if smTR == 0 {
		return 0
	}
	pdi := smPDM / smTR * 100
	ndi := smNDM / smTR * 100
	if pdi+ndi == 0 {
		return 0
	}
	d := pdi - ndi
	if d < 0 {
		d = -d
	}
	return d / (pdi + ndi) * 100
}
