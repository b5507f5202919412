package domain

// DiagramView is the structured node/edge payload handed to the diagram
// rendering collaborator. The engine only supplies data; notation is the
// renderer's business.
type DiagramView struct {
	Title       string        `json:"title,omitempty"`
	GatewayName string        `json:"gateway_name,omitempty"`
	Nodes       []DiagramNode `json:"nodes"`
	Edges       []DiagramEdge `json:"edges"`
}

// DiagramNode is one switch in a diagram.
type DiagramNode struct {
	DeviceID         string `json:"device_id"`
	Name             string `json:"name"`
	Tier             int    `json:"tier"`
	Priority         int    `json:"priority"`
	IsRoot           bool   `json:"is_root"`
	GatewayAdjacent  bool   `json:"gateway_adjacent"`
}

// DiagramEdge is one inter-switch link in a diagram.
type DiagramEdge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Blocked bool   `json:"blocked"`
}
