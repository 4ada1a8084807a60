package classifier

import (
	"fmt"
	"math"
)

// Label is a resolved two-level category.
type Label struct {
	Parent string
	Sub    string
}

func (l Label) String() string {
	return l.Parent + " > " + l.Sub
}

// Classifier runs two-stage inference over an immutable artifact. Safe for
// concurrent use; Classify never mutates the artifact.
type Classifier struct {
	art *Artifact
}

// New wraps a validated artifact.
func New(art *Artifact) *Classifier {
	return &Classifier{art: art}
}

// Version reports the loaded artifact version.
func (c *Classifier) Version() string {
	return c.art.Version
}

// Classify predicts the category pair for one transaction. Stage 1 scores
// the parent category from the normalized "{description} {type}" tokens plus
// the amount feature; stage 2 appends the normalized parent label to the
// same tokens and scores the subcategory. amountCents is a positive
// magnitude in cents.
func (c *Classifier) Classify(description string, txType string, amountCents int64) (Label, error) {
	tokens := Normalize(description + " " + txType)
	amountFeat := amountFeature(amountCents)

	parent, err := c.art.Parent.predict(tokens, amountFeat)
	if err != nil {
		return Label{}, fmt.Errorf("parent stage: %w", err)
	}

	subTokens := tokens + " " + Normalize(parent)
	sub, err := c.art.Sub.predict(subTokens, amountFeat)
	if err != nil {
		return Label{}, fmt.Errorf("sub stage: %w", err)
	}

	return Label{Parent: parent, Sub: sub}, nil
}

// amountFeature compresses the amount magnitude into a tight range so price
// bands inform the prediction without drowning the text features.
func amountFeature(amountCents int64) float64 {
	if amountCents < 0 {
		amountCents = -amountCents
	}
	return math.Log1p(float64(amountCents) / 100)
}

func (s *Stage) predict(tokens string, amountFeat float64) (string, error) {
	if len(s.Model.Classes) == 0 {
		return "", fmt.Errorf("model has no classes")
	}
	x := s.Vectorizer.Transform(tokens)
	x = append(x, amountFeat)

	best := 0
	bestScore := math.Inf(-1)
	for i, row := range s.Model.Weights {
		score := s.Model.Intercepts[i]
		for j, w := range row {
			score += w * x[j]
		}
		// ties resolve to the lowest class index for determinism
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return s.Model.Classes[best], nil
}
