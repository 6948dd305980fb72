package modelbundle

// testArtifact returns a small three-class multinomial model:
// groceries (walmart, store), transport (shell, gas), retail (amazon).
func testArtifact() *Artifact {
	return &Artifact{
		Version: "2024.01",
		Labels:  []string{"groceries", "transport", "retail"},
		Vectorizer: VectorizerSpec{
			Vocabulary: map[string]int{
				"walmart":       0,
				"store":         1,
				"walmart store": 2,
				"shell":         3,
				"gas":           4,
				"amazon":        5,
			},
			IDF:          []float64{1, 1, 1, 1, 1, 1},
			NgramRange:   []int{1, 2},
			StripAccents: StripAccentsUnicode,
		},
		Classifier: ClassifierSpec{
			Coefficients: [][]float64{
				{2, 1, 1, 0, 0, 0},
				{0, 0, 0, 2, 2, 0},
				{0, 0.5, 0, 0, 0, 3},
			},
			Intercepts: []float64{0, 0, 0},
			MultiClass: MultiClassMultinomial,
		},
	}
}

// binaryArtifact returns a binary model with a single coefficient row.
func binaryArtifact(multiClass string) *Artifact {
	return &Artifact{
		Version: "binary-1",
		Labels:  []string{"no", "yes"},
		Vectorizer: VectorizerSpec{
			Vocabulary: map[string]int{"yes": 0},
			IDF:        []float64{1},
			NgramRange: []int{1, 1},
		},
		Classifier: ClassifierSpec{
			Coefficients: [][]float64{{1}},
			Intercepts:   []float64{0},
			MultiClass:   multiClass,
		},
	}
}
