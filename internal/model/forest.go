package model

import "fmt"

const leafMarker = -1

// Tree is a single regression tree in flat-array form: node i branches on
// Feature[i] at Threshold[i], descending left when x <= threshold. A node
// with Left[i] == -1 is a leaf holding Value[i].
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"children_left"`
	Right     []int     `json:"children_right"`
	Value     []float64 `json:"value"`
}

func (t *Tree) validate(numFeatures int) error {
	n := len(t.Feature)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return fmt.Errorf("tree node arrays have mismatched lengths")
	}
	for i := 0; i < n; i++ {
		if t.Left[i] == leafMarker {
			if t.Right[i] != leafMarker {
				return fmt.Errorf("node %d is half leaf", i)
			}
			continue
		}
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return fmt.Errorf("node %d has out-of-range children (%d, %d)", i, t.Left[i], t.Right[i])
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("node %d splits on unknown encoded feature %d", i, t.Feature[i])
		}
	}
	return nil
}

// predict walks the tree for one encoded feature vector. Children always
// point forward (validated at load), so the walk terminates.
func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.Left[node] != leafMarker {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return t.Value[node]
}

// Forest is the trained random-forest regressor: prediction is the mean of
// the per-tree outputs.
type Forest struct {
	Trees []Tree `json:"trees"`
}

func (f *Forest) validate(numFeatures int) error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(numFeatures); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (f *Forest) predict(x []float64) float64 {
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}
