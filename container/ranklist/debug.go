package ranklist

import (
	"fmt"
	"io"
)

// DebugDump writes a diagram of the internal link structure to w, one row
// per level from the highest down to the base, followed by the elements and
// their ranks. Spans are printed on each link. Intended for debugging and
// tests on small lists; output width grows with every element.
func (l *List[E]) DebugDump(w io.Writer) error {
	for level := l.head.level(); level >= 0; level-- {
		for n := l.head; n != nil; n = n.next[level] {
			if _, err := fmt.Fprintf(w, "|%2d|", n.width[level]); err != nil {
				return err
			}
			for span := n.width[level]; span > 1; span-- {
				if _, err := io.WriteString(w, "--------"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "--->"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, "  H     "); err != nil {
		return err
	}
	for n := l.head.next[0]; n != nil; n = n.next[0] {
		if _, err := fmt.Fprintf(w, "<%2v>    ", n.elem); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, " %2d     ", l.size); err != nil {
		return err
	}
	for i := 0; i < l.size; i++ {
		if _, err := fmt.Fprintf(w, "[%2d]    ", i); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")

	return err
}
