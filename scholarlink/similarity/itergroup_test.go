package similarity

import (
	"reflect"
	"testing"
)

func TestMakeGroups(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6, 7}

	got := MakeGroups(ids, 3)
	want := [][]int64{{1, 2, 3}, {4, 5, 6}, {7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMakeGroupsSingleGroup(t *testing.T) {
	ids := []int64{1, 2, 3}
	got := MakeGroups(ids, 100)
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("got %v", got)
	}
}

func TestMakeGroupsCoversAllIds(t *testing.T) {
	ids := make([]int64, 1000)
	for i := range ids {
		ids[i] = int64(i)
	}
	groups := MakeGroups(ids, 7)
	total := 0
	for _, g := range groups {
		if len(g) > 7 {
			t.Fatalf("group of %d exceeds size max", len(g))
		}
		total += len(g)
	}
	if total != len(ids) {
		t.Fatalf("groups cover %d of %d ids", total, len(ids))
	}
}

func TestMakeGroupsDegenerateSizeMax(t *testing.T) {
	got := MakeGroups([]int64{1, 2}, 0)
	if len(got) != 2 {
		t.Fatalf("size max below 1 should clamp to 1, got %v", got)
	}
}

func TestGroupSizeMax(t *testing.T) {
	tests := []struct {
		rows int
		want int
	}{
		{0, maxQueryRows},
		{1, maxQueryRows},
		{1000, 10_000},
		{maxQueryRows * 2, 1},
	}
	for _, tc := range tests {
		if got := GroupSizeMax(tc.rows); got != tc.want {
			t.Errorf("GroupSizeMax(%d) = %d, want %d", tc.rows, got, tc.want)
		}
	}
}
