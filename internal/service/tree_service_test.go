package service

import (
	"testing"

	"upline/internal/models"
)

func TestBuildTree(t *testing.T) {
	gold := &models.Package{Name: "Gold", Price: 1000, BV: 50}
	gold.ID = 1
	root := &models.User{ID: 1, Username: "root", BV: 300, PackageID: &gold.ID, Package: gold}
	a := &models.User{ID: 2, Username: "a", ReferredBy: "root", BV: 100}
	b := &models.User{ID: 3, Username: "b", ReferredBy: "root", BV: 200}
	a1 := &models.User{ID: 4, Username: "a1", ReferredBy: "a", BV: 40}
	store := newStubStore(root, a, b, a1)
	svc := NewTreeService(store)

	tree, err := svc.BuildTree("root")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree == nil {
		t.Fatal("expected a tree")
	}
	if tree.Username != "root" || tree.BV != 300 || tree.Package != "Gold" {
		t.Errorf("root node = %+v", tree)
	}
	if len(tree.Referrals) != 2 {
		t.Fatalf("root children = %d, want 2", len(tree.Referrals))
	}
	// Children come back in id order.
	if tree.Referrals[0].Username != "a" || tree.Referrals[1].Username != "b" {
		t.Errorf("children = %s, %s", tree.Referrals[0].Username, tree.Referrals[1].Username)
	}
	if len(tree.Referrals[0].Referrals) != 1 || tree.Referrals[0].Referrals[0].Username != "a1" {
		t.Errorf("a's subtree = %+v", tree.Referrals[0].Referrals)
	}
	leaf := tree.Referrals[0].Referrals[0]
	if leaf.Referrals == nil || len(leaf.Referrals) != 0 {
		t.Errorf("leaf referrals must be an empty slice, got %#v", leaf.Referrals)
	}
}

func TestBuildTreeUnknownUser(t *testing.T) {
	svc := NewTreeService(newStubStore())
	tree, err := svc.BuildTree("ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree != nil {
		t.Errorf("expected nil tree, got %+v", tree)
	}
}

func TestBuildTreeSurvivesCorruptCycle(t *testing.T) {
	// referred_by cycles cannot be created through registration, but corrupt
	// rows must not hang the walk.
	a := &models.User{ID: 1, Username: "a", ReferredBy: "b"}
	b := &models.User{ID: 2, Username: "b", ReferredBy: "a"}
	store := newStubStore(a, b)
	svc := NewTreeService(store)

	tree, err := svc.BuildTree("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree == nil || tree.Username != "a" {
		t.Fatalf("tree = %+v", tree)
	}
	if len(tree.Referrals) != 1 || tree.Referrals[0].Username != "b" {
		t.Fatalf("a's children = %+v", tree.Referrals)
	}
	if len(tree.Referrals[0].Referrals) != 0 {
		t.Errorf("cycle must terminate, b's children = %+v", tree.Referrals[0].Referrals)
	}
}
