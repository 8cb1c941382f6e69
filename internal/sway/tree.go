package sway

// Rect is a container geometry rectangle.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// windowProperties carries the X11 class for xwayland windows.
type windowProperties struct {
	Class string `json:"class"`
}

// Node is one container in the compositor's layout tree.
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Layout           string            `json:"layout"`
	Rect             Rect              `json:"rect"`
	Focused          bool              `json:"focused"`
	AppID            string            `json:"app_id"`
	WindowProperties *windowProperties `json:"window_properties"`
	Num              int               `json:"num"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
}

// IsWindow reports whether the node is a leaf window container.
func (n *Node) IsWindow() bool {
	return len(n.Nodes) == 0 && (n.Type == "con" || n.Type == "floating_con") &&
		(n.AppID != "" || n.WindowProperties != nil || n.Name != "")
}

// App returns the best available application identifier for the node.
func (n *Node) App() string {
	if n.AppID != "" {
		return n.AppID
	}
	if n.WindowProperties != nil && n.WindowProperties.Class != "" {
		return n.WindowProperties.Class
	}
	return n.Name
}

// Find walks the tree depth first, floating containers included, and returns
// the first node matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, child := range n.Nodes {
		if found := child.Find(pred); found != nil {
			return found
		}
	}
	for _, child := range n.FloatingNodes {
		if found := child.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindWorkspace returns the workspace node with the given number.
func (n *Node) FindWorkspace(num int) *Node {
	return n.Find(func(node *Node) bool {
		return node.Type == "workspace" && node.Num == num
	})
}

// Windows collects the leaf windows under n in tree order, tiled only.
func (n *Node) Windows() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if node.IsWindow() {
			out = append(out, node)
			return
		}
		for _, child := range node.Nodes {
			walk(child)
		}
	}
	for _, child := range n.Nodes {
		walk(child)
	}
	return out
}

// Workspace is one entry from the get_workspaces reply.
type Workspace struct {
	ID      int64  `json:"id"`
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}
