package ranklist_test

import (
	"fmt"

	"github.com/jnhankins/ffmv/container/ranklist"
)

func ExampleList_At() {
	l := ranklist.New[int]()
	for _, v := range []int{5, 1, 4, 1, 5, 9, 2, 6} {
		l.Insert(v)
	}

	median, _ := l.At(l.Len() / 2)
	fmt.Println(l, median)

	// Output:
	// [1 1 2 4 5 5 6 9] 5
}

func ExampleNewFunc() {
	// Order strings by length; ties keep insertion order.
	l := ranklist.NewFunc(func(a, b string) int {
		return len(a) - len(b)
	})
	l.Insert("kick")
	l.Insert("hat")
	l.Insert("snare")

	it := l.Iter()
	for it.Next() {
		fmt.Println(it.Value())
	}

	// Output:
	// hat
	// kick
	// snare
}
