package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the fitted model bundle: two text vectorizers and two linear
// models, trained offline and versioned as one immutable file. It is loaded
// once at process start and shared read-only across requests.
type Artifact struct {
	Version string `json:"version"`
	Parent  Stage  `json:"parent"`
	Sub     Stage  `json:"sub"`
}

// Stage pairs a fitted vectorizer with a fitted linear model.
type Stage struct {
	Vectorizer Vectorizer  `json:"vectorizer"`
	Model      LinearModel `json:"model"`
}

// Vectorizer holds a fitted TF-IDF vocabulary. Vocabulary maps a normalized
// token to its vector index; IDF holds the per-token inverse document
// frequency weight at the same index.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// LinearModel scores one class per weight row over the feature vector
// (vectorizer output plus the trailing numeric amount feature).
type LinearModel struct {
	Classes    []string    `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

// LoadArtifact reads and validates a model artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return &a, nil
}

// Validate checks dimensional consistency so inference never indexes out of
// range.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("missing version")
	}
	if err := a.Parent.validate("parent"); err != nil {
		return err
	}
	return a.Sub.validate("sub")
}

func (s *Stage) validate(name string) error {
	vocabSize := len(s.Vectorizer.Vocabulary)
	if len(s.Vectorizer.IDF) != vocabSize {
		return fmt.Errorf("%s: idf length %d does not match vocabulary size %d", name, len(s.Vectorizer.IDF), vocabSize)
	}
	for tok, idx := range s.Vectorizer.Vocabulary {
		if idx < 0 || idx >= vocabSize {
			return fmt.Errorf("%s: token %q index %d out of range", name, tok, idx)
		}
	}
	n := len(s.Model.Classes)
	if n == 0 {
		return fmt.Errorf("%s: model has no classes", name)
	}
	if len(s.Model.Weights) != n || len(s.Model.Intercepts) != n {
		return fmt.Errorf("%s: %d classes but %d weight rows and %d intercepts", name, n, len(s.Model.Weights), len(s.Model.Intercepts))
	}
	want := vocabSize + 1 // trailing amount feature
	for i, row := range s.Model.Weights {
		if len(row) != want {
			return fmt.Errorf("%s: weight row %d has %d features, want %d", name, i, len(row), want)
		}
	}
	return nil
}
