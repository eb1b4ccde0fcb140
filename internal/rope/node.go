package rope

import (
	"strings"
	"unicode/utf8"
)

// MaxLeafSize is the maximum number of bytes stored in a single leaf.
const MaxLeafSize = 512

// node is a rope tree node. Leaves carry text, branches carry two children.
// Nodes are never mutated after construction.
type node struct {
	left, right *node
	text        string

	bytes    int
	newlines int
	height   int
}

func newLeaf(s string) *node {
	if s == "" {
		return nil
	}
	return &node{
		text:     s,
		bytes:    len(s),
		newlines: strings.Count(s, "\n"),
	}
}

func newBranch(left, right *node) *node {
	return &node{
		left:     left,
		right:    right,
		bytes:    left.bytes + right.bytes,
		newlines: left.newlines + right.newlines,
		height:   max(left.height, right.height) + 1,
	}
}

func (n *node) isLeaf() bool {
	return n.left == nil && n.right == nil
}

func height(n *node) int {
	if n == nil {
		return -1
	}
	return n.height
}

// join concatenates two trees, keeping the result height-balanced.
func join(l, r *node) *node {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.bytes+r.bytes <= MaxLeafSize {
		return newLeaf(l.text + r.text)
	}

	switch hl, hr := l.height, r.height; {
	case hl > hr+1:
		return rebalance(newBranch(l.left, join(l.right, r)))
	case hr > hl+1:
		return rebalance(newBranch(join(l, r.left), r.right))
	default:
		return newBranch(l, r)
	}
}

// rebalance restores the AVL height invariant for a branch whose children
// differ in height by at most two.
func rebalance(n *node) *node {
	if n.isLeaf() {
		return n
	}
	switch bf := height(n.left) - height(n.right); {
	case bf > 1:
		left := n.left
		if height(left.left) < height(left.right) {
			left = rotateLeft(left)
		}
		return rotateRight(newBranch(left, n.right))
	case bf < -1:
		right := n.right
		if height(right.right) < height(right.left) {
			right = rotateRight(right)
		}
		return rotateLeft(newBranch(n.left, right))
	default:
		return n
	}
}

func rotateLeft(n *node) *node {
	r := n.right
	if r == nil || r.isLeaf() {
		return n
	}
	return newBranch(newBranch(n.left, r.left), r.right)
}

func rotateRight(n *node) *node {
	l := n.left
	if l == nil || l.isLeaf() {
		return n
	}
	return newBranch(l.left, newBranch(l.right, n.right))
}

// split divides the tree at byte offset into [0, offset) and [offset, end).
func split(n *node, offset int) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	if offset <= 0 {
		return nil, n
	}
	if offset >= n.bytes {
		return n, nil
	}
	if n.isLeaf() {
		offset = runeBoundary(n.text, offset)
		return newLeaf(n.text[:offset]), newLeaf(n.text[offset:])
	}

	switch {
	case offset < n.left.bytes:
		ll, lr := split(n.left, offset)
		return ll, join(lr, n.right)
	case offset == n.left.bytes:
		return n.left, n.right
	default:
		rl, rr := split(n.right, offset-n.left.bytes)
		return join(n.left, rl), rr
	}
}

// runeBoundary moves offset back to the start of the rune containing it.
func runeBoundary(s string, offset int) int {
	for offset > 0 && offset < len(s) && !utf8.RuneStart(s[offset]) {
		offset--
	}
	return offset
}

// buildBalanced builds a tree bottom-up from leaves.
func buildBalanced(leaves []*node) *node {
	if len(leaves) == 0 {
		return nil
	}
	nodes := leaves
	for len(nodes) > 1 {
		parents := make([]*node, 0, (len(nodes)+1)/2)
		for i := 0; i < len(nodes); i += 2 {
			if i+1 < len(nodes) {
				parents = append(parents, newBranch(nodes[i], nodes[i+1]))
			} else {
				parents = append(parents, nodes[i])
			}
		}
		nodes = parents
	}
	return nodes[0]
}

// chunk splits s into leaf-sized pieces on rune boundaries.
func chunk(s string) []*node {
	leaves := make([]*node, 0, len(s)/MaxLeafSize+1)
	for len(s) > 0 {
		end := len(s)
		if end > MaxLeafSize {
			end = runeBoundary(s, MaxLeafSize)
			if end == 0 {
				end = MaxLeafSize
			}
		}
		leaves = append(leaves, newLeaf(s[:end]))
		s = s[end:]
	}
	return leaves
}

// appendRange writes the bytes in [start, end) of the subtree to sb.
func appendRange(sb *strings.Builder, n *node, start, end int) {
	if n == nil || start >= end || start >= n.bytes || end <= 0 {
		return
	}
	if n.isLeaf() {
		sb.WriteString(n.text[max(start, 0):min(end, n.bytes)])
		return
	}
	appendRange(sb, n.left, start, end)
	appendRange(sb, n.right, start-n.left.bytes, end-n.left.bytes)
}

// newlineOffset returns the byte offset just after the k-th newline (0-indexed).
func newlineOffset(n *node, k int) int {
	offset := 0
	for n != nil && !n.isLeaf() {
		if k < n.left.newlines {
			n = n.left
			continue
		}
		k -= n.left.newlines
		offset += n.left.bytes
		n = n.right
	}
	if n == nil {
		return offset
	}
	for i := 0; i < len(n.text); i++ {
		if n.text[i] != '\n' {
			continue
		}
		if k == 0 {
			return offset + i + 1
		}
		k--
	}
	return offset + len(n.text)
}
