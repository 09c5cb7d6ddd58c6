package fuzzy

import "fmt"

// Surface is a control surface sampled on a regular grid.
// Z[i][j] is the output for X[j] and Y[i].
type Surface struct {
	XVar, YVar string
	X, Y       []float64
	Z          [][]float64
}

// Surface evaluates the controller over the universes of two inputs. Each
// grid point goes through Compute and is therefore recorded in the history.
func (c *Controller) Surface(xVar, yVar string, resolution int) (Surface, error) {
	if resolution < 2 {
		return Surface{}, fmt.Errorf("%w: surface resolution %d", ErrConfiguration, resolution)
	}
	xv, err := c.Input(xVar)
	if err != nil {
		return Surface{}, err
	}
	yv, err := c.Input(yVar)
	if err != nil {
		return Surface{}, err
	}
	s := Surface{
		XVar: xVar,
		YVar: yVar,
		X:    xv.Universe(resolution),
		Y:    yv.Universe(resolution),
		Z:    make([][]float64, resolution),
	}
	for i, y := range s.Y {
		s.Z[i] = make([]float64, resolution)
		for j, x := range s.X {
			s.Z[i][j], err = c.Compute(map[string]float64{xVar: x, yVar: y})
			if err != nil {
				return Surface{}, err
			}
		}
	}
	return s, nil
}
