package zoo

import "sort"

// datasetShapes are the [C,H,W] input shapes of the datasets the zoo
// knows about.
var datasetShapes = map[string][]int{
	"mnist":         {1, 28, 28},
	"cifar10":       {3, 32, 32},
	"tiny-imagenet": {3, 64, 64},
}

// imageNetShape is used for datasets the zoo has no entry for.
var imageNetShape = []int{3, 224, 224}

// InputShape returns the input shape of a known dataset.
func InputShape(dataset string) ([]int, bool) {
	s, ok := datasetShapes[dataset]
	if !ok {
		return nil, false
	}
	return append([]int(nil), s...), true
}

// Datasets lists the known dataset names in sorted order.
func Datasets() []string {
	out := make([]string, 0, len(datasetShapes))
	for name := range datasetShapes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func inputShapeOr(dataset string, fallback []int) []int {
	if s, ok := InputShape(dataset); ok {
		return s
	}
	return append([]int(nil), fallback...)
}
