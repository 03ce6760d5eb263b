package similarity

// maxQueryRows bounds the rows a single group query may pull in. Group
// size scales inversely with how many topic rows each cohort member
// carries.
const maxQueryRows = 10_000_000

// GroupSizeMax derives the partition bound for a cohort: the number of
// ids one group may hold so that a group's query stays under maxQueryRows.
func GroupSizeMax(cohortTopicRows int) int {
	if cohortTopicRows <= 0 {
		return maxQueryRows
	}
	size := maxQueryRows / cohortTopicRows
	if size < 1 {
		return 1
	}
	return size
}

// MakeGroups partitions ids into consecutive groups. A group closes as
// soon as its running count reaches sizeMax, so groups may exceed nothing
// but the last one may be short.
func MakeGroups(ids []int64, sizeMax int) [][]int64 {
	if sizeMax < 1 {
		sizeMax = 1
	}
	groups := make([][]int64, 0)
	var current []int64
	for _, id := range ids {
		current = append(current, id)
		if len(current) >= sizeMax {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}
