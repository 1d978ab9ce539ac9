package physics2d

// Sleep islands. Bodies connected through contacts or joints sleep and wake
// as a group; the grouping is a union-find over body slots rebuilt every
// step, since the contact graph changes freely between steps.

type unionFind struct {
	parent   []int32
	rank     []int8
	minSleep []float64
	count    int
}

func (u *unionFind) init(capacity int) {
	u.parent = make([]int32, capacity)
	u.rank = make([]int8, capacity)
	u.minSleep = make([]float64, capacity)
}

// reset prepares the structure for n singleton sets.
func (u *unionFind) reset(n int) {
	u.count = n
	for i := 0; i < n; i++ {
		u.parent[i] = int32(i)
		u.rank[i] = 0
		u.minSleep[i] = maxFloat
	}
}

func (u *unionFind) find(i int) int {
	root := i
	for int(u.parent[root]) != root {
		root = int(u.parent[root])
	}
	// Path compression.
	for int(u.parent[i]) != root {
		next := int(u.parent[i])
		u.parent[i] = int32(root)
		i = next
	}
	return root
}

func (u *unionFind) union(a, b int) {
	ra := u.find(a)
	rb := u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = int32(ra)
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// accumulateMinSleep folds a member's rest time into its island minimum.
func (u *unionFind) accumulateMinSleep(i int, sleepTime float64) {
	root := u.find(i)
	if sleepTime < u.minSleep[root] {
		u.minSleep[root] = sleepTime
	}
}

// minSleepOf returns the minimum rest time across i's island.
func (u *unionFind) minSleepOf(i int) float64 {
	return u.minSleep[u.find(i)]
}
