package warp

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Interpolate fits a natural cubic spline through the projective parameters
// of maps, keyed by the strictly increasing times ts, and evaluates it at
// every query. Queries outside [ts[0], ts[len-1]] take the nearest end
// mapping. A single mapping is returned unchanged for every query.
func Interpolate(ts []float32, maps []Mapping, queries []float32) ([]Mapping, error) {
	if len(maps) == 0 {
		return nil, errors.New("warp: no mappings to interpolate")
	}
	if len(ts) != len(maps) {
		return nil, fmt.Errorf("warp: %d times for %d mappings", len(ts), len(maps))
	}
	out := make([]Mapping, len(queries))
	if len(maps) == 1 {
		for i := range out {
			out[i] = maps[0]
		}
		return out, nil
	}

	xs := make([]float64, len(ts))
	for i, t := range ts {
		xs[i] = float64(t)
		if i > 0 && !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("warp: times must be strictly increasing, got %v after %v", t, ts[i-1])
		}
	}

	nparams := Projective.NumParams()
	params := make([][]float32, len(maps))
	for i, m := range maps {
		params[i] = m.Params(Projective)
	}
	splines := make([]interp.NaturalCubic, nparams)
	ys := make([]float64, len(maps))
	for k := range nparams {
		for i := range params {
			ys[i] = float64(params[i][k])
		}
		if err := splines[k].Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("warp: fit parameter %d: %w", k, err)
		}
	}

	p := make([]float32, nparams)
	for i, q := range queries {
		for k := range splines {
			p[k] = float32(splines[k].Predict(float64(q)))
		}
		m, _, err := FromParams(p)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
