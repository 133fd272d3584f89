package forest

import "sort"

// node is one element of a tree's flat node array. Feature is -1 for a
// leaf; interior nodes route rows with value <= Threshold to Left.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

// tree is a single CART regression tree stored as a flat node array,
// which keeps the serialized artifact compact.
type tree struct {
	Nodes []node `json:"nodes"`
}

const (
	leafFeature     = -1
	minSamplesSplit = 2
)

// treeBuilder grows one tree over a row subset, accumulating per-feature
// impurity decreases for the importance ranking.
type treeBuilder struct {
	rows       [][]float64
	labels     []float64
	maxDepth   int
	importance []float64
}

func (b *treeBuilder) build(indices []int) *tree {
	t := &tree{}
	b.grow(t, indices, 0)
	return t
}

// grow appends the subtree for indices and returns its node index.
func (b *treeBuilder) grow(t *tree, indices []int, depth int) int {
	sum, sumSq := labelSums(b.labels, indices)
	n := float64(len(indices))
	mean := sum / n
	sse := sumSq - sum*sum/n

	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, node{Feature: leafFeature, Value: mean})

	if depth >= b.maxDepth || len(indices) < minSamplesSplit || sse <= 0 {
		return id
	}

	feature, threshold, gain := b.bestSplit(indices, sse)
	if feature < 0 {
		return id
	}
	b.importance[feature] += gain

	left, right := partition(b.rows, indices, feature, threshold)
	l := b.grow(t, left, depth+1)
	r := b.grow(t, right, depth+1)

	t.Nodes[id] = node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return id
}

// bestSplit scans every feature for the threshold that most reduces the
// sum of squared errors. Returns feature -1 when no split improves on the
// parent node.
func (b *treeBuilder) bestSplit(indices []int, parentSSE float64) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestSSE := parentSSE

	order := make([]int, len(indices))
	for feature := 0; feature < len(b.rows[0]); feature++ {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool {
			return b.rows[order[i]][feature] < b.rows[order[j]][feature]
		})

		rightSum, rightSumSq := labelSums(b.labels, order)
		var leftSum, leftSumSq float64

		for i := 0; i < len(order)-1; i++ {
			y := b.labels[order[i]]
			leftSum += y
			leftSumSq += y * y
			rightSum -= y
			rightSumSq -= y * y

			cur, next := b.rows[order[i]][feature], b.rows[order[i+1]][feature]
			if cur == next {
				continue // can't split between identical values
			}

			nl, nr := float64(i+1), float64(len(order)-i-1)
			sse := (leftSumSq - leftSum*leftSum/nl) + (rightSumSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, parentSSE - bestSSE
}

func (t *tree) predict(vec []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leafFeature {
			return n.Value
		}
		if vec[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func labelSums(labels []float64, indices []int) (sum, sumSq float64) {
	for _, i := range indices {
		y := labels[i]
		sum += y
		sumSq += y * y
	}
	return sum, sumSq
}

func partition(rows [][]float64, indices []int, feature int, threshold float64) (left, right []int) {
	for _, i := range indices {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}
