package model

// Comment is one server-confirmed node of a discussion. IDs come from the API and are
// never generated locally. Children are in arrival order, oldest first.
type Comment struct {
	ID        string    `json:"uid"`
	Author    string    `json:"user_name"`
	Body      string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	Children  []Comment `json:"replies"`
}

// Forest is the ordered list of top-level comments of one event, newest first.
//
// A Forest value is never edited in place. AddTopLevel and AddReply return new forests
// that share every untouched subtree with their input.
type Forest []Comment

// AddTopLevel returns a forest with node prepended.
func AddTopLevel(forest Forest, node Comment) Forest {
	out := make(Forest, 0, len(forest)+1)
	out = append(out, node)
	return append(out, forest...)
}

// AddReply appends node to the children of the comment whose ID is parentID, searching
// depth first in pre-order. It reports false and returns forest itself when no comment
// matches.
func AddReply(forest Forest, parentID string, node Comment) (Forest, bool) {
	updated, ok := addReply(forest, parentID, node)
	if !ok {
		return forest, false
	}
	return Forest(updated), true
}

func addReply(nodes []Comment, parentID string, node Comment) ([]Comment, bool) {
	for i := range nodes {
		if nodes[i].ID == parentID {
			target := nodes[i]
			children := make([]Comment, len(target.Children), len(target.Children)+1)
			copy(children, target.Children)
			target.Children = append(children, node)
			return replaceAt(nodes, i, target), true
		}
		if children, ok := addReply(nodes[i].Children, parentID, node); ok {
			ancestor := nodes[i]
			ancestor.Children = children
			return replaceAt(nodes, i, ancestor), true
		}
	}
	return nodes, false
}

// replaceAt copies nodes with position i swapped for c.
func replaceAt(nodes []Comment, i int, c Comment) []Comment {
	out := make([]Comment, len(nodes))
	copy(out, nodes)
	out[i] = c
	return out
}

// Walk visits every comment in pre-order with its depth, the number of ancestors.
// Returning false from fn stops the walk.
func Walk(forest Forest, fn func(c Comment, depth int) bool) {
	type frame struct {
		c     *Comment
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{c: &forest[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(*top.c, top.depth) {
			return
		}
		children := top.c.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{c: &children[i], depth: top.depth + 1})
		}
	}
}

// Find returns the first comment with id in pre-order, and its depth.
func Find(forest Forest, id string) (Comment, int, bool) {
	var (
		found Comment
		depth int
		ok    bool
	)
	Walk(forest, func(c Comment, d int) bool {
		if c.ID == id {
			found, depth, ok = c, d, true
			return false
		}
		return true
	})
	return found, depth, ok
}

// Count returns the number of comments in the forest.
func (f Forest) Count() int {
	n := 0
	Walk(f, func(Comment, int) bool {
		n++
		return true
	})
	return n
}
