package layout

// NodeState tells the front-end how to present a rendered node.
type NodeState string

const (
	// NodeOK is a fully resolved node with its data in Props.
	NodeOK NodeState = "ok"
	// NodeLoading marks a node whose data binding has not resolved yet.
	NodeLoading NodeState = "loading"
	// NodeError marks a node whose own render or data fetch failed. Message
	// carries a short, non-internal description.
	NodeError NodeState = "error"
	// NodeFallback marks a placeholder substituted for an unresolvable
	// component key.
	NodeFallback NodeState = "fallback"
)

// RenderNode is one node of the resolved tree returned to the client.
// Where ComponentNode describes intent (a component key plus raw props),
// RenderNode is the outcome: the concrete kind, the merged props, and a
// state the client can present without further lookups.
type RenderNode struct {
	Kind     string         `json:"kind"`
	Slot     Slot           `json:"slot,omitempty"`
	State    NodeState      `json:"state"`
	Props    map[string]any `json:"props,omitempty"`
	Binding  string         `json:"binding,omitempty"`
	Message  string         `json:"message,omitempty"`
	Children []*RenderNode  `json:"children,omitempty"`
}

// ErrorNode builds the standard error placeholder rendered in place of a
// node that failed. The message must already be safe for end users.
func ErrorNode(slot Slot, kind, message string) *RenderNode {
	return &RenderNode{
		Kind:    kind,
		Slot:    slot,
		State:   NodeError,
		Message: message,
	}
}

// FallbackNode builds the placeholder for a component key the registry could
// not resolve. The original key is kept in props so the builder UI can show
// what was asked for.
func FallbackNode(slot Slot, key string) *RenderNode {
	return &RenderNode{
		Kind:  "fallback",
		Slot:  slot,
		State: NodeFallback,
		Props: map[string]any{"requestedKey": key},
	}
}
