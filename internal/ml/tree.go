package ml

import "sort"

// treeNode is one node of a regression tree. Leaf nodes carry the mean target
// value of the training rows that reached them.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// minSplitSamples is the smallest node that may still be split.
const minSplitSamples = 2

// buildTree grows a regression tree by greedy variance-reduction splits.
// idx selects the rows of X/y that reached this node.
func buildTree(X [][]float64, y []float64, idx []int, depth, maxDepth int) *treeNode {
	if depth >= maxDepth || len(idx) < minSplitSamples || constantTarget(y, idx) {
		return &treeNode{Leaf: true, Value: meanTarget(y, idx)}
	}

	feature, threshold, ok := bestSplit(X, y, idx)
	if !ok {
		return &treeNode{Leaf: true, Value: meanTarget(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Value: meanTarget(y, idx)}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, y, left, depth+1, maxDepth),
		Right:     buildTree(X, y, right, depth+1, maxDepth),
	}
}

// bestSplit scans every feature for the threshold that minimizes the summed
// squared error of the two children. Candidate thresholds are midpoints
// between consecutive distinct feature values.
func bestSplit(X [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	bestSSE := parentSSE(y, idx)
	cols := len(X[idx[0]])

	order := make([]int, len(idx))
	for f := 0; f < cols; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		// Prefix sums over the sorted order let each candidate split be
		// evaluated in constant time.
		var sumL, sqL float64
		sumR, sqR := 0.0, 0.0
		for _, i := range order {
			sumR += y[i]
			sqR += y[i] * y[i]
		}

		for k := 0; k < len(order)-1; k++ {
			v := y[order[k]]
			sumL += v
			sqL += v * v
			sumR -= v
			sqR -= v * v

			cur, next := X[order[k]][f], X[order[k+1]][f]
			if cur == next {
				continue
			}

			nL, nR := float64(k+1), float64(len(order)-k-1)
			sse := (sqL - sumL*sumL/nL) + (sqR - sumR*sumR/nR)
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

func (n *treeNode) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func parentSSE(y []float64, idx []int) float64 {
	var sum, sq float64
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	n := float64(len(idx))
	return sq - sum*sum/n
}

func meanTarget(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func constantTarget(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
