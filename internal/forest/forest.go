// Package forest implements the random-forest regressor and the standard
// scaler that together form the persisted model artifacts.
package forest

import (
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Config controls forest training.
type Config struct {
	Trees    int
	MaxDepth int
	Seed     uint64
}

// Regressor is a bootstrap-aggregated ensemble of CART regression trees.
// Prediction is the mean of the per-tree predictions.
type Regressor struct {
	Features    []string  `json:"features"`
	Trees       []*tree   `json:"trees"`
	MaxDepth    int       `json:"max_depth"`
	Seed        uint64    `json:"seed"`
	Importances []float64 `json:"importances"`
}

// Fit trains a forest on the scaled feature rows. Trees are grown
// concurrently, one bootstrap sample each; every tree derives its own
// rand source from the base seed so results are reproducible regardless
// of scheduling.
func Fit(rows [][]float64, labels []float64, features []string, cfg Config) (*Regressor, error) {
	if len(rows) == 0 {
		return nil, eris.New("forest: no training rows")
	}
	if len(rows) != len(labels) {
		return nil, eris.Errorf("forest: %d rows but %d labels", len(rows), len(labels))
	}
	if cfg.Trees <= 0 || cfg.MaxDepth <= 0 {
		return nil, eris.Errorf("forest: invalid config trees=%d max_depth=%d", cfg.Trees, cfg.MaxDepth)
	}

	r := &Regressor{
		Features: append([]string(nil), features...),
		Trees:    make([]*tree, cfg.Trees),
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
	}

	builders := make([]*treeBuilder, cfg.Trees)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < cfg.Trees; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + uint64(i)))
			sample := bootstrap(len(rows), rng)

			b := &treeBuilder{
				rows:       rows,
				labels:     labels,
				maxDepth:   cfg.MaxDepth,
				importance: make([]float64, len(rows[0])),
			}
			builders[i] = b
			r.Trees[i] = b.build(sample)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "forest: fit")
	}

	r.Importances = sumImportances(builders, len(rows[0]))
	return r, nil
}

// Predict returns the forest's estimate for one scaled feature vector.
func (r *Regressor) Predict(vec []float64) (float64, error) {
	if len(vec) != len(r.Features) {
		return 0, eris.Errorf("forest: expected %d features, got %d", len(r.Features), len(vec))
	}
	if len(r.Trees) == 0 {
		return 0, eris.New("forest: model has no trees")
	}
	var sum float64
	for _, t := range r.Trees {
		sum += t.predict(vec)
	}
	return sum / float64(len(r.Trees)), nil
}

// PredictAll estimates every row.
func (r *Regressor) PredictAll(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		p, err := r.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// bootstrap draws n row indices with replacement.
func bootstrap(n int, rng *rand.Rand) []int {
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}
	return sample
}

// sumImportances pools per-tree impurity decreases and normalizes them to
// sum to 1, matching the usual presentation of forest feature importance.
func sumImportances(builders []*treeBuilder, cols int) []float64 {
	total := make([]float64, cols)
	var sum float64
	for _, b := range builders {
		for j, v := range b.importance {
			total[j] += v
			sum += v
		}
	}
	if sum > 0 {
		for j := range total {
			total[j] /= sum
		}
	}
	return total
}
