package classifier

import (
	"math"
	"strings"
)

// Transform maps a normalized token string to an l2-normalized TF-IDF
// vector. Tokens outside the fitted vocabulary contribute nothing.
func (v *Vectorizer) Transform(tokens string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	for _, tok := range strings.Fields(tokens) {
		if idx, ok := v.Vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for idx := range vec {
		if vec[idx] > 0 {
			vec[idx] *= v.IDF[idx]
			norm += vec[idx] * vec[idx]
		}
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}
