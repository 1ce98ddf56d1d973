package docsystem

// Crumb is one entry of a node's ancestor path
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
