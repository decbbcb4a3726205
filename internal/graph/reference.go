package graph

// referenceAdjacency is a 3x3 grid whose center touches every other node.
//
//	1 - 2 - 3
//	| \ | / |
//	4 - 5 - 6
//	| / | \ |
//	7 - 8 - 9
var referenceAdjacency = map[int][]int{
	1: {2, 4, 5},
	2: {1, 3, 5},
	3: {2, 5, 6},
	4: {1, 5, 7},
	5: {1, 2, 3, 4, 6, 7, 8, 9},
	6: {3, 5, 9},
	7: {4, 5, 8},
	8: {5, 7, 9},
	9: {5, 6, 8},
}

// Reference returns the default nine node board.
func Reference() *Graph {
	g, err := New(referenceAdjacency)
	if err != nil {
		panic("graph: invalid reference board: " + err.Error())
	}
	return g
}
