package modelbundle

import "math"

// LinearClassifier is a fitted logistic regression over TF-IDF features.
type LinearClassifier struct {
	weights    [][]float64
	intercepts []float64
	multiClass string
	numClasses int
}

func newLinearClassifier(spec ClassifierSpec, numClasses int) *LinearClassifier {
	return &LinearClassifier{
		weights:    spec.Coefficients,
		intercepts: spec.Intercepts,
		multiClass: spec.MultiClass,
		numClasses: numClasses,
	}
}

// decision returns W·x + b for every coefficient row.
func (c *LinearClassifier) decision(x SparseVector) []float64 {
	z := make([]float64, len(c.weights))
	for k, row := range c.weights {
		s := c.intercepts[k]
		for i, idx := range x.Indices {
			s += row[idx] * x.Values[i]
		}
		z[k] = s
	}
	return z
}

// Probabilities returns one probability per class, summing to 1.
func (c *LinearClassifier) Probabilities(x SparseVector) []float64 {
	z := c.decision(x)

	if c.multiClass == MultiClassOVR {
		if len(z) == 1 {
			p := sigmoid(z[0])
			return []float64{1 - p, p}
		}
		probs := make([]float64, len(z))
		var sum float64
		for k, v := range z {
			probs[k] = sigmoid(v)
			sum += probs[k]
		}
		if sum == 0 {
			return uniform(len(z))
		}
		for k := range probs {
			probs[k] /= sum
		}
		return probs
	}

	if len(z) == 1 {
		return softmax([]float64{-z[0], z[0]})
	}
	return softmax(z)
}

// Predict returns the index of the most probable class. Ties go to the
// lowest index.
func (c *LinearClassifier) Predict(x SparseVector) int {
	return argmax(c.Probabilities(x))
}

func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		if v > maxZ {
			maxZ = v
		}
	}
	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func uniform(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
