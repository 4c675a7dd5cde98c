package similarity

// DisjointSet tracks connected student IDs. Elements are added lazily on first Find.
type DisjointSet struct {
	parent map[string]string
}

// NewDisjointSet allocates an empty set forest.
func NewDisjointSet() *DisjointSet {
	return &DisjointSet{parent: make(map[string]string)}
}

// Find returns the representative of x, compressing the path it walked.
func (d *DisjointSet) Find(x string) string {
	parent, ok := d.parent[x]
	if !ok {
		d.parent[x] = x
		return x
	}

	root := parent
	for d.parent[root] != root {
		root = d.parent[root]
	}

	for x != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}

	return root
}

// Union merges the sets containing x and y by pointing the root of x at the root of y.
func (d *DisjointSet) Union(x, y string) {
	rx, ry := d.Find(x), d.Find(y)
	if rx != ry {
		d.parent[rx] = ry
	}
}

// Cluster groups students connected through highPairs edges. Only buckets with at least two
// members are returned. Groups and members follow submission order.
func Cluster(submissions []Submission, highPairs []PairScore) [][]Student {
	set := NewDisjointSet()
	for _, pair := range highPairs {
		set.Union(pair.A.ID, pair.B.ID)
	}

	order := make([]string, 0, len(submissions))
	buckets := make(map[string][]Student, len(submissions))
	for _, submission := range submissions {
		root := set.Find(submission.StudentID)
		if _, seen := buckets[root]; !seen {
			order = append(order, root)
		}
		buckets[root] = append(buckets[root], submission.Student())
	}

	groups := make([][]Student, 0)
	for _, root := range order {
		if members := buckets[root]; len(members) >= 2 {
			groups = append(groups, members)
		}
	}

	return groups
}
