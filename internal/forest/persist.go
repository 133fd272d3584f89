package forest

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Save writes the scaler artifact as JSON.
func (s *Scaler) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return eris.Wrap(err, "scaler: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "scaler: write %s", path)
	}
	return nil
}

// LoadScaler reads a scaler artifact written by Save.
func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scaler: read %s", path)
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrapf(err, "scaler: unmarshal %s", path)
	}
	if len(s.Means) == 0 || len(s.Means) != len(s.Stddevs) {
		return nil, eris.Errorf("scaler: artifact %s is malformed", path)
	}
	return &s, nil
}

// Save writes the model artifact as JSON. Tree nodes dominate the size;
// the flat representation keeps a 100-tree forest in the low megabytes.
func (r *Regressor) Save(path string) error {
	data, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "forest: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "forest: write %s", path)
	}
	return nil
}

// LoadRegressor reads a model artifact written by Save.
func LoadRegressor(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "forest: read %s", path)
	}
	var r Regressor
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "forest: unmarshal %s", path)
	}
	if len(r.Trees) == 0 {
		return nil, eris.Errorf("forest: artifact %s has no trees", path)
	}
	return &r, nil
}
