package domain

// Department is a node of the organizational forest.
type Department struct {
	ID       string
	Name     string
	ParentID *string
}
