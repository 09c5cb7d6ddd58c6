// Driver for quick experiments

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"example.com/fuzzy-hvac/core/fuzzy"
)

func runX() {
	initLogger(true /* verbose */)

	c, err := fuzzy.NewHVACController(fuzzy.Centroid, fuzzy.Minimum)
	if err != nil {
		log.Fatal("failed to create controller", zap.Error(err))
	}
	in := map[string]float64{
		fuzzy.TemperatureVar: 26,
		fuzzy.ErrorVar:       3,
	}
	ms, err := c.Fuzzify(in)
	if err != nil {
		log.Fatal("failed to fuzzify", zap.Error(err))
	}
	as, err := c.Engine().Activations(ms, 0.01)
	if err != nil {
		log.Fatal("failed to evaluate rules", zap.Error(err))
	}
	for _, a := range as {
		fmt.Fprintf(os.Stdout, "R%02d [%5.3f] %s\n", a.Index+1, a.Strength, a.Rule)
	}

	u, curve, err := c.Aggregate(in)
	if err != nil {
		log.Fatal("failed to aggregate", zap.Error(err))
	}
	vs := fuzzy.CompareMethods(u, curve)
	for _, m := range fuzzy.Methods() {
		log.Debug("defuzzified output", zap.String("method", string(m)), zap.Float64("power", vs[m]))
	}
}
