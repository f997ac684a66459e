package users

import (
	"sort"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

// TreeNode is one user in the reporting hierarchy.
type TreeNode struct {
	User     models.UserPublic `json:"user"`
	Children []*TreeNode       `json:"children"`
}

// BuildTree assembles the reporting forest for an organization's users. All
// nodes are allocated up front and linked through an ID index, so the build is
// a single pass over the input plus a pass to attach children. Users whose
// manager is missing from the set become roots, as does any member of a
// manager cycle, so every user appears exactly once.
func BuildTree(list []models.UserPublic) []*TreeNode {
	nodes := make([]TreeNode, len(list))
	index := make(map[uuid.UUID]*TreeNode, len(list))
	for i := range list {
		nodes[i].User = list[i]
		nodes[i].Children = []*TreeNode{}
		index[list[i].ID] = &nodes[i]
	}

	var roots []*TreeNode
	for i := range nodes {
		n := &nodes[i]
		mgr := n.User.ManagerID
		if mgr == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*mgr]
		if !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	// Nodes caught in a manager cycle are attached to each other but never
	// reachable from a root. Detach the first node of each such cycle and
	// promote it.
	seen := make(map[*TreeNode]bool, len(nodes))
	var mark func(n *TreeNode)
	mark = func(n *TreeNode) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	for i := range nodes {
		n := &nodes[i]
		if seen[n] {
			continue
		}
		if mgr := n.User.ManagerID; mgr != nil {
			if parent, ok := index[*mgr]; ok {
				parent.Children = removeChild(parent.Children, n)
			}
		}
		roots = append(roots, n)
		mark(n)
	}

	sortNodes(roots)
	return roots
}

func removeChild(children []*TreeNode, n *TreeNode) []*TreeNode {
	for i, c := range children {
		if c == n {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

func sortNodes(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].User.FullName != nodes[j].User.FullName {
			return nodes[i].User.FullName < nodes[j].User.FullName
		}
		return nodes[i].User.Email < nodes[j].User.Email
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
