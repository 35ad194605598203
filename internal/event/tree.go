package event

import (
	"errors"
	"fmt"
	"slices"
)

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) error {
	if err := n.checkAttach(child); err != nil {
		return err
	}
	if n.mirror != nil && child.mirror != nil {
		if err := n.mirror.AppendChild(child.mirror); err != nil {
			return fmt.Errorf("mirror append %s under %s: %w", child, n, err)
		}
	}

	child.parent = n
	n.children = append(n.children, child)
	n.propagateInterest(child, 1)
	return nil
}

// InsertBefore adds child to n immediately before ref, which must be a
// current child of n.
func (n *Node) InsertBefore(child, ref *Node) error {
	if ref == nil {
		return fmt.Errorf("insert before: %w", ErrNilNode)
	}
	if err := n.checkAttach(child); err != nil {
		return err
	}
	idx := n.ChildIndex(ref)
	if idx < 0 {
		return fmt.Errorf("insert %s before %s: %w", child, ref, ErrNotChild)
	}
	if n.mirror != nil && child.mirror != nil {
		var err error
		if next := n.mirroredFrom(idx); next != nil {
			err = n.mirror.InsertBefore(child.mirror, next)
		} else {
			err = n.mirror.AppendChild(child.mirror)
		}
		if err != nil {
			return fmt.Errorf("mirror insert %s under %s: %w", child, n, err)
		}
	}

	child.parent = n
	n.children = slices.Insert(n.children, idx, child)
	n.propagateInterest(child, 1)
	return nil
}

// RemoveChild detaches child from n. It reports false, and changes nothing,
// when child is not a current child of n.
func (n *Node) RemoveChild(child *Node) (bool, error) {
	idx := n.ChildIndex(child)
	if idx < 0 {
		return false, nil
	}
	if n.mirror != nil && child.mirror != nil {
		if err := n.mirror.RemoveChild(child.mirror); err != nil {
			return false, fmt.Errorf("mirror remove %s from %s: %w", child, n, err)
		}
	}

	n.children = slices.Delete(n.children, idx, idx+1)
	n.propagateInterest(child, -1)
	child.parent = nil
	return true, nil
}

// Remove detaches n from its parent. A root is left unchanged.
func (n *Node) Remove() (bool, error) {
	if n.parent == nil {
		return false, nil
	}
	return n.parent.RemoveChild(n)
}

// ReplaceWith puts replacement at n's position and detaches n. On error
// the tree is left as it was.
func (n *Node) ReplaceWith(replacement *Node) error {
	parent := n.parent
	if parent == nil {
		return fmt.Errorf("replace %s: %w", n, ErrDetached)
	}
	if err := parent.InsertBefore(replacement, n); err != nil {
		return err
	}
	if _, err := parent.RemoveChild(n); err != nil {
		if _, rerr := parent.RemoveChild(replacement); rerr != nil {
			return errors.Join(err, fmt.Errorf("undo insert of %s: %w", replacement, rerr))
		}
		return err
	}
	return nil
}

// mirroredFrom returns the mirror of the first child at or after idx that
// has one.
func (n *Node) mirroredFrom(idx int) Mirror {
	for _, c := range n.children[idx:] {
		if c.mirror != nil {
			return c.mirror
		}
	}
	return nil
}

// ChildIndex returns the position of child among n's children, or -1.
func (n *Node) ChildIndex(child *Node) int {
	if child == nil {
		return -1
	}
	return slices.Index(n.children, child)
}

// Index returns n's position among its parent's children, or -1 for a root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	return n.parent.ChildIndex(n)
}

func (n *Node) checkAttach(child *Node) error {
	if child == nil {
		return fmt.Errorf("attach under %s: %w", n, ErrNilNode)
	}
	if child.parent != nil {
		return fmt.Errorf("attach %s under %s: %w", child, n, ErrAttached)
	}
	for a := n; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("attach %s under %s: %w", child, n, ErrCycle)
		}
	}
	return nil
}
