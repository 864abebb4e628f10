package community

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// ErrUnknownDetector is returned by ByName for an unregistered name.
var ErrUnknownDetector = errors.New("unknown detector")

// Options carries the settings shared by the built-in detectors.
type Options struct {
	Resolution    float64
	Seed          int64
	MaxLevels     int
	MaxIterations int
	MaxRemovals   int
	Directed      bool
}

type factory func(opts Options, logger zerolog.Logger) Detector

var registry = map[string]factory{
	"louvain": func(opts Options, logger zerolog.Logger) Detector {
		config := DefaultLouvainConfig()
		config.Resolution = opts.Resolution
		config.RandomSeed = opts.Seed
		if opts.MaxLevels > 0 {
			config.MaxLevels = opts.MaxLevels
		}
		if opts.MaxIterations > 0 {
			config.MaxIterations = opts.MaxIterations
		}
		return NewLouvain(config, logger)
	},
	"modularity": func(opts Options, _ zerolog.Logger) Detector {
		return Modularize{
			Resolution: opts.Resolution,
			Seed:       uint64(opts.Seed),
			Directed:   opts.Directed,
		}
	},
	"betweenness": func(opts Options, logger zerolog.Logger) Detector {
		return EdgeBetweenness{
			MaxRemovals: opts.MaxRemovals,
			Resolution:  opts.Resolution,
			Logger:      logger.With().Str("detector", "betweenness").Logger(),
		}
	},
	"components": func(Options, zerolog.Logger) Detector {
		return Components{}
	},
}

// ByName returns the built-in detector registered under name.
func ByName(name string, opts Options, logger zerolog.Logger) (Detector, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownDetector, name, Names())
	}
	return f(opts, logger), nil
}

// Names lists the registered detector names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
