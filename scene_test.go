package physics2d_test

import (
	"math"
	"testing"

	physics2d "github.com/flashkit/physics2d"
)

func translate(x, y float64) physics2d.Transform {
	return physics2d.Transform{
		Position: physics2d.MakeVec2(x, y),
		ScaleX:   1,
		ScaleY:   1,
	}
}

func TestSceneComposesParentChain(t *testing.T) {
	s := physics2d.NewScene(16)

	root := s.CreateNode(physics2d.NullNodeId)
	child := s.CreateNode(root)
	grandchild := s.CreateNode(child)

	s.SetNodeTransform(root, translate(10, 0))
	s.SetNodeTransform(child, translate(5, 0))
	s.SetNodeTransform(grandchild, translate(1, 2))

	s.UpdateTransforms(nil)

	got, ok := s.NodeWorldTransform(grandchild)
	if !ok {
		t.Fatal("node lookup failed")
	}
	if math.Abs(got.Position.X-16.0) > 1e-9 || math.Abs(got.Position.Y-2.0) > 1e-9 {
		t.Fatalf("world position (%.3f, %.3f), want (16, 2)", got.Position.X, got.Position.Y)
	}
}

func TestSceneRotatedParent(t *testing.T) {
	s := physics2d.NewScene(16)

	root := s.CreateNode(physics2d.NullNodeId)
	child := s.CreateNode(root)

	parentT := translate(10, 0)
	parentT.Rotation = math.Pi / 2
	s.SetNodeTransform(root, parentT)
	s.SetNodeTransform(child, translate(5, 0))

	s.UpdateTransforms(nil)

	// The child's local +x offset rotates into the parent's +y.
	got, _ := s.NodeWorldTransform(child)
	if math.Abs(got.Position.X-10.0) > 1e-9 || math.Abs(got.Position.Y-5.0) > 1e-9 {
		t.Fatalf("world position (%.3f, %.3f), want (10, 5)", got.Position.X, got.Position.Y)
	}
	if math.Abs(got.Rotation-math.Pi/2) > 1e-9 {
		t.Fatalf("world rotation %.4f, want pi/2", got.Rotation)
	}
}

func TestSceneScalePropagates(t *testing.T) {
	s := physics2d.NewScene(16)

	root := s.CreateNode(physics2d.NullNodeId)
	child := s.CreateNode(root)

	parentT := translate(0, 0)
	parentT.ScaleX = 2
	parentT.ScaleY = 3
	s.SetNodeTransform(root, parentT)
	s.SetNodeTransform(child, translate(5, 5))

	s.UpdateTransforms(nil)

	got, _ := s.NodeWorldTransform(child)
	if math.Abs(got.Position.X-10.0) > 1e-9 || math.Abs(got.Position.Y-15.0) > 1e-9 {
		t.Fatalf("world position (%.3f, %.3f), want (10, 15)", got.Position.X, got.Position.Y)
	}
	if got.ScaleX != 2 || got.ScaleY != 3 {
		t.Fatalf("world scale (%.1f, %.1f), want (2, 3)", got.ScaleX, got.ScaleY)
	}
}

func TestSceneBodyBoundNodeFollowsSimulation(t *testing.T) {
	w := physics2d.NewWorld(8)
	ball := w.CreateBody(dynamicCircleDef(0, 100, 20))

	s := physics2d.NewScene(16)
	node := s.CreateNode(physics2d.NullNodeId)
	s.BindNodeToBody(node, ball)

	stepN(w, 30, testDt)
	s.UpdateTransforms(w)

	pos, _ := w.GetBodyPosition(ball)
	got, _ := s.NodeWorldTransform(node)
	if got.Position != pos {
		t.Fatalf("bound node at %+v, body at %+v", got.Position, pos)
	}

	// Unbinding freezes the node at its explicit local transform again.
	s.BindNodeToBody(node, physics2d.NullBodyId)
	s.SetNodeTransform(node, translate(7, 7))
	s.UpdateTransforms(w)
	got, _ = s.NodeWorldTransform(node)
	if got.Position.X != 7 || got.Position.Y != 7 {
		t.Fatalf("unbound node at %+v, want (7,7)", got.Position)
	}
}

func TestSceneDestroyNodeReparentsChildren(t *testing.T) {
	s := physics2d.NewScene(16)

	root := s.CreateNode(physics2d.NullNodeId)
	mid := s.CreateNode(root)
	leaf := s.CreateNode(mid)

	s.SetNodeTransform(root, translate(10, 0))
	s.SetNodeTransform(mid, translate(100, 0))
	s.SetNodeTransform(leaf, translate(1, 0))

	s.DestroyNode(mid)
	if s.NodeCount() != 2 {
		t.Fatalf("node count %d after destroy, want 2", s.NodeCount())
	}
	if _, ok := s.NodeWorldTransform(mid); ok {
		t.Fatal("destroyed node still resolves")
	}

	// The leaf now hangs off the root directly.
	s.UpdateTransforms(nil)
	got, ok := s.NodeWorldTransform(leaf)
	if !ok {
		t.Fatal("surviving child lost its handle")
	}
	if math.Abs(got.Position.X-11.0) > 1e-9 {
		t.Fatalf("reparented leaf at x=%.3f, want 11", got.Position.X)
	}
}

func TestSceneCapacityAndStaleParent(t *testing.T) {
	s := physics2d.NewScene(2)
	a := s.CreateNode(physics2d.NullNodeId)
	b := s.CreateNode(physics2d.NullNodeId)
	if c := s.CreateNode(physics2d.NullNodeId); !c.IsNull() {
		t.Fatal("node created past capacity")
	}

	s.DestroyNode(b)
	if c := s.CreateNode(b); !c.IsNull() {
		t.Fatal("node created under a destroyed parent")
	}
	if c := s.CreateNode(a); c.IsNull() {
		t.Fatal("freed capacity not reusable")
	}
}
