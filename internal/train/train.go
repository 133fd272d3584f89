// Package train runs the offline pipeline: synthesize data, fit the
// scaler and forest, evaluate on the held-out split, persist artifacts.
package train

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/aqi-service/internal/aqi"
	"github.com/sells-group/aqi-service/internal/forest"
	"github.com/sells-group/aqi-service/internal/synth"
)

// Config controls the training pipeline.
type Config struct {
	Samples      int
	Seed         uint64
	Trees        int
	MaxDepth     int
	TestFraction float64
	OutputDir    string
}

// Metrics holds held-out evaluation results.
type Metrics struct {
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// FeatureImportance pairs a feature with its normalized importance.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Result is the outcome of one training run.
type Result struct {
	Scaler      *forest.Scaler
	Model       *forest.Regressor
	Metrics     Metrics
	Importances []FeatureImportance
	TrainRows   int
	TestRows    int
	Elapsed     time.Duration
}

// ScalerPath returns the scaler artifact location under dir.
func ScalerPath(dir string) string { return filepath.Join(dir, "scaler.json") }

// ModelPath returns the model artifact location under dir.
func ModelPath(dir string) string { return filepath.Join(dir, "aqi_model.json") }

// Run executes the full pipeline and persists all artifacts under
// cfg.OutputDir.
func Run(cfg Config) (*Result, error) {
	start := time.Now()

	zap.L().Info("generating synthetic air quality data",
		zap.Int("samples", cfg.Samples),
		zap.Uint64("seed", cfg.Seed),
	)
	ds := synth.Generate(cfg.Samples, cfg.Seed)

	trainSet, testSet := split(ds, cfg.TestFraction, cfg.Seed)

	scaler, err := forest.FitScaler(trainSet.Features, aqi.FeatureNames)
	if err != nil {
		return nil, eris.Wrap(err, "train: fit scaler")
	}
	trainScaled, err := scaler.TransformAll(trainSet.Features)
	if err != nil {
		return nil, eris.Wrap(err, "train: scale train split")
	}
	testScaled, err := scaler.TransformAll(testSet.Features)
	if err != nil {
		return nil, eris.Wrap(err, "train: scale test split")
	}

	zap.L().Info("training random forest",
		zap.Int("trees", cfg.Trees),
		zap.Int("max_depth", cfg.MaxDepth),
		zap.Int("train_rows", trainSet.Len()),
	)
	model, err := forest.Fit(trainScaled, trainSet.Labels, aqi.FeatureNames, forest.Config{
		Trees:    cfg.Trees,
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return nil, eris.Wrap(err, "train: fit forest")
	}

	metrics, err := evaluate(model, testScaled, testSet.Labels)
	if err != nil {
		return nil, eris.Wrap(err, "train: evaluate")
	}

	result := &Result{
		Scaler:      scaler,
		Model:       model,
		Metrics:     metrics,
		Importances: rankImportances(model),
		TrainRows:   trainSet.Len(),
		TestRows:    testSet.Len(),
		Elapsed:     time.Since(start),
	}

	if err := persist(cfg.OutputDir, ds, result); err != nil {
		return nil, err
	}
	return result, nil
}

// split shuffles row indices with the pipeline seed and carves off the
// last testFraction of them as the held-out split.
func split(ds *synth.Dataset, testFraction float64, seed uint64) (trainSet, testSet *synth.Dataset) {
	n := ds.Len()
	indices := rand.New(rand.NewSource(seed)).Perm(n)

	testN := int(float64(n) * testFraction)
	cut := n - testN

	pick := func(idx []int) *synth.Dataset {
		out := &synth.Dataset{
			Features: make([][]float64, len(idx)),
			Labels:   make([]float64, len(idx)),
		}
		for i, j := range idx {
			out.Features[i] = ds.Features[j]
			out.Labels[i] = ds.Labels[j]
		}
		return out
	}
	return pick(indices[:cut]), pick(indices[cut:])
}

func evaluate(model *forest.Regressor, rows [][]float64, labels []float64) (Metrics, error) {
	preds, err := model.PredictAll(rows)
	if err != nil {
		return Metrics{}, err
	}

	var sse float64
	for i, p := range preds {
		d := p - labels[i]
		sse += d * d
	}
	mse := sse / float64(len(preds))

	return Metrics{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   stat.RSquaredFrom(preds, labels, nil),
	}, nil
}

func rankImportances(model *forest.Regressor) []FeatureImportance {
	out := make([]FeatureImportance, len(model.Features))
	for i, f := range model.Features {
		out[i] = FeatureImportance{Feature: f, Importance: model.Importances[i]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}

func persist(dir string, ds *synth.Dataset, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "train: create output dir %s", dir)
	}
	if err := result.Scaler.Save(ScalerPath(dir)); err != nil {
		return err
	}
	if err := result.Model.Save(ModelPath(dir)); err != nil {
		return err
	}
	if err := writeSampleCSV(filepath.Join(dir, "sample_training_data.csv"), ds, 20); err != nil {
		return err
	}
	if err := writeImportanceCSV(filepath.Join(dir, "feature_importance.csv"), result.Importances); err != nil {
		return err
	}
	return writeSummary(filepath.Join(dir, "model_summary.txt"), result)
}
