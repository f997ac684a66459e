package users

import (
	"testing"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

func user(name string, manager *uuid.UUID) models.UserPublic {
	return models.UserPublic{
		ID:        uuid.New(),
		FullName:  name,
		Email:     name + "@example.com",
		ManagerID: manager,
	}
}

func findChild(n *TreeNode, name string) *TreeNode {
	for _, c := range n.Children {
		if c.User.FullName == name {
			return c
		}
	}
	return nil
}

func countNodes(nodes []*TreeNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countNodes(node.Children)
	}
	return n
}

func TestBuildTreeForest(t *testing.T) {
	boss := user("boss", nil)
	lead := user("lead", &boss.ID)
	rep1 := user("rep one", &lead.ID)
	rep2 := user("rep two", &lead.ID)
	solo := user("solo", nil)

	roots := BuildTree([]models.UserPublic{rep2, solo, boss, rep1, lead})

	if len(roots) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(roots))
	}
	if roots[0].User.FullName != "boss" || roots[1].User.FullName != "solo" {
		t.Errorf("roots = %q, %q; want boss, solo", roots[0].User.FullName, roots[1].User.FullName)
	}

	ln := findChild(roots[0], "lead")
	if ln == nil {
		t.Fatal("lead missing under boss")
	}
	if len(ln.Children) != 2 {
		t.Fatalf("lead has %d reports, want 2", len(ln.Children))
	}
	if ln.Children[0].User.FullName != "rep one" || ln.Children[1].User.FullName != "rep two" {
		t.Errorf("reports out of order: %q, %q", ln.Children[0].User.FullName, ln.Children[1].User.FullName)
	}
}

func TestBuildTreeMissingManagerBecomesRoot(t *testing.T) {
	ghost := uuid.New()
	orphan := user("orphan", &ghost)

	roots := BuildTree([]models.UserPublic{orphan})
	if len(roots) != 1 || roots[0].User.ID != orphan.ID {
		t.Fatalf("orphan not promoted to root: %d roots", len(roots))
	}
}

func TestBuildTreeSelfManagerBecomesRoot(t *testing.T) {
	u := models.UserPublic{ID: uuid.New(), FullName: "loop", Email: "loop@example.com"}
	u.ManagerID = &u.ID

	roots := BuildTree([]models.UserPublic{u})
	if len(roots) != 1 {
		t.Fatalf("self-managed user not a root: %d roots", len(roots))
	}
	if len(roots[0].Children) != 0 {
		t.Error("self-managed user must not be its own child")
	}
}

func TestBuildTreeCyclePromoted(t *testing.T) {
	a := user("alpha", nil)
	b := user("beta", nil)
	a.ManagerID = &b.ID
	b.ManagerID = &a.ID
	c := user("gamma", &a.ID)
	root := user("root", nil)

	roots := BuildTree([]models.UserPublic{a, b, c, root})

	if got := countNodes(roots); got != 4 {
		t.Fatalf("tree holds %d nodes, want every user exactly once (4)", got)
	}
	if len(roots) != 2 {
		t.Fatalf("len(roots) = %d, want the plain root plus one promoted cycle member", len(roots))
	}

	var promoted *TreeNode
	for _, r := range roots {
		if r.User.FullName != "root" {
			promoted = r
		}
	}
	if promoted == nil {
		t.Fatal("no cycle member was promoted to root")
	}
	// The rest of the cycle and its subordinates hang off the promoted node.
	if got := 1 + countNodes(promoted.Children); got != 3 {
		t.Errorf("promoted subtree holds %d nodes, want 3", got)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	if roots := BuildTree(nil); len(roots) != 0 {
		t.Errorf("BuildTree(nil) = %d roots, want 0", len(roots))
	}
}
