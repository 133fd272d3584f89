package train

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/aqi-service/internal/aqi"
	"github.com/sells-group/aqi-service/internal/synth"
)

// writeSampleCSV saves the first n dataset rows with their labels for
// manual inspection. Nothing in the serving path reads it.
func writeSampleCSV(path string, ds *synth.Dataset, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "train: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := append(append([]string(nil), aqi.FeatureNames...), "AQI")
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "train: write sample header")
	}

	if n > ds.Len() {
		n = ds.Len()
	}
	row := make([]string, len(header))
	for i := 0; i < n; i++ {
		for j, v := range ds.Features[i] {
			row[j] = formatFloat(v)
		}
		row[len(row)-1] = formatFloat(ds.Labels[i])
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "train: write sample row")
		}
	}
	return nil
}

// writeImportanceCSV saves the sorted feature-importance table.
func writeImportanceCSV(path string, importances []FeatureImportance) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "train: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"feature", "importance"}); err != nil {
		return eris.Wrap(err, "train: write importance header")
	}
	for _, fi := range importances {
		if err := w.Write([]string{fi.Feature, formatFloat(fi.Importance)}); err != nil {
			return eris.Wrap(err, "train: write importance row")
		}
	}
	return nil
}

// writeSummary saves a plain-text report of metrics and importances.
func writeSummary(path string, result *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "train: create %s", path)
	}
	defer f.Close()

	fmt.Fprintf(f, "Random Forest Regressor Model\n")
	fmt.Fprintf(f, "R2 Score: %.4f\n", result.Metrics.R2)
	fmt.Fprintf(f, "MSE: %.2f\n", result.Metrics.MSE)
	fmt.Fprintf(f, "RMSE: %.2f\n\n", result.Metrics.RMSE)
	fmt.Fprintf(f, "Feature Importance:\n")
	for _, fi := range result.Importances {
		fmt.Fprintf(f, "%-12s %.4f\n", fi.Feature, fi.Importance)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
