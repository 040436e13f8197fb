package service

import (
	"errors"

	"gorm.io/gorm"
)

// TreeNode is one user in the materialized downline snapshot.
type TreeNode struct {
	Username  string      `json:"username"`
	BV        float64     `json:"bv"`
	Package   string      `json:"package"`
	Referrals []*TreeNode `json:"referrals"`
}

// TreeService materializes the full downline of a user as a BV-annotated
// tree. The whole subtree is built eagerly, so it suits moderate tree sizes
// only; large deployments would want depth limiting or pagination.
type TreeService struct {
	users UserStore
}

func NewTreeService(users UserStore) *TreeService {
	return &TreeService{users: users}
}

// BuildTree returns the downline tree rooted at username, or nil if the user
// does not exist. The data model forbids cycles, but a visited set guards
// the recursion anyway so corrupt data cannot hang the request.
func (s *TreeService) BuildTree(username string) (*TreeNode, error) {
	return s.build(username, map[string]bool{})
}

func (s *TreeService) build(username string, visited map[string]bool) (*TreeNode, error) {
	if visited[username] {
		return nil, nil
	}
	visited[username] = true

	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	node := &TreeNode{
		Username:  user.Username,
		BV:        user.BV,
		Referrals: []*TreeNode{},
	}
	if user.Package != nil {
		node.Package = user.Package.Name
	}

	children, err := s.users.ListReferrals(user.Username)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childNode, err := s.build(child.Username, visited)
		if err != nil {
			return nil, err
		}
		if childNode != nil {
			node.Referrals = append(node.Referrals, childNode)
		}
	}
	return node, nil
}
