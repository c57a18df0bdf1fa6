package domain

import "fmt"

// NodeKind классифицирует узел транспортного графа.
type NodeKind int

const (
	NodeKindUnspecified NodeKind = iota
	NodeKindMetro
	NodeKindBus
	NodeKindRail
	NodeKindTram
	NodeKindEntrance
	NodeKindPOI
)

// String возвращает человекочитаемое имя вида узла.
func (k NodeKind) String() string {
	switch k {
	case NodeKindMetro:
		return "metro"
	case NodeKindBus:
		return "bus"
	case NodeKindRail:
		return "rail"
	case NodeKindTram:
		return "tram"
	case NodeKindEntrance:
		return "entrance"
	case NodeKindPOI:
		return "poi"
	default:
		return "unspecified"
	}
}

// ParseNodeKind parses the external CSV/Postgres vocabulary into a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	switch s {
	case "metro":
		return NodeKindMetro, true
	case "bus":
		return NodeKindBus, true
	case "rail":
		return NodeKindRail, true
	case "tram":
		return NodeKindTram, true
	case "entrance":
		return NodeKindEntrance, true
	case "poi":
		return NodeKindPOI, true
	default:
		return NodeKindUnspecified, false
	}
}

// Mode identifies the transit service (or walking) an edge belongs to.
type Mode int

const (
	ModeUnspecified Mode = iota
	ModeWalk
	ModeBus
	ModeMetro
	ModeRail
	ModeTram
)

// String возвращает человекочитаемое имя режима.
func (m Mode) String() string {
	switch m {
	case ModeWalk:
		return "walk"
	case ModeBus:
		return "bus"
	case ModeMetro:
		return "metro"
	case ModeRail:
		return "rail"
	case ModeTram:
		return "tram"
	default:
		return "unspecified"
	}
}

// Label returns a display label for the mode, used by itinerary narration.
func (m Mode) Label() string {
	switch m {
	case ModeWalk:
		return "Walk"
	case ModeBus:
		return "Bus"
	case ModeMetro:
		return "Metro"
	case ModeRail:
		return "Rail"
	case ModeTram:
		return "Tram"
	default:
		return "Unknown"
	}
}

// ParseMode parses the external vocabulary into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "walk":
		return ModeWalk, true
	case "bus":
		return ModeBus, true
	case "metro":
		return ModeMetro, true
	case "rail":
		return ModeRail, true
	case "tram":
		return ModeTram, true
	default:
		return ModeUnspecified, false
	}
}

// Node описывает одно место в транспортном графе: остановку, станцию, вход
// на станцию или точку интереса. Node is a value type; the graph owns it and
// never hands out a pointer into mutable state.
type Node struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
	Kind NodeKind
}

// Edge describes one directed, atomic traversal between two nodes. Endpoints
// are stored as dense indices, never external ids — those are resolved once
// at build time.
type Edge struct {
	From        int32
	To          int32
	TimeMin     float64
	Transfer    bool
	Stairs      bool
	BadPavement bool
	FloodRisk   bool
	Mode        Mode
}

// Key возвращает пару индексов ребра, удобную для построения множеств/масок.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To}
}

// EdgeKey identifies a directed edge by its endpoint indices.
type EdgeKey struct {
	From int32
	To   int32
}

// String implements fmt.Stringer for debug output and log fields.
func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.From, k.To)
}

// BuildErrorKind enumerates the ways raw node/edge records can fail to form
// a valid graph. These are fatal at construction time; there is no partial
// graph on failure.
type BuildErrorKind int

const (
	BuildErrorUnspecified BuildErrorKind = iota
	BuildErrorDuplicateNodeID
	BuildErrorUnknownEndpoint
	BuildErrorNonPositiveTime
	BuildErrorSelfLoop
)

// String возвращает имя вида ошибки построения графа.
func (k BuildErrorKind) String() string {
	switch k {
	case BuildErrorDuplicateNodeID:
		return "duplicate_node_id"
	case BuildErrorUnknownEndpoint:
		return "unknown_endpoint"
	case BuildErrorNonPositiveTime:
		return "non_positive_time"
	case BuildErrorSelfLoop:
		return "self_loop"
	default:
		return "unspecified"
	}
}

// NodeRecord and EdgeRecord are the already-parsed inputs build_graph
// consumes. Ingestion (CSV, Postgres, anything else) produces these; the
// graph store itself never touches raw bytes.
type NodeRecord struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
	Kind string
}

// EdgeRecord is the pre-parsed edge row handed to BuildGraph.
type EdgeRecord struct {
	From        string
	To          string
	TimeMin     float64
	Transfer    bool
	Stairs      bool
	BadPavement bool
	FloodRisk   bool
	Mode        string
}

// Graph is an immutable, CSR-style directed graph. It is built once from
// NodeRecord/EdgeRecord slices and never mutated afterwards, so concurrent
// queries need no synchronisation.
type Graph struct {
	nodes    []Node
	idIndex  map[string]int32
	head     []int32 // len == len(nodes)+1
	edges    []Edge  // packed, ordered by From via head offsets
	edgeSlot map[EdgeKey]int32
}

// NodeCount возвращает число узлов в графе.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount возвращает число рёбер в графе.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// NodeByIndex returns the node stored at the given dense index. The caller
// must pass an index obtained from this graph (IndexOf, Outgoing, …); it is
// not bounds-checked against external input.
func (g *Graph) NodeByIndex(i int32) Node {
	return g.nodes[i]
}

// IndexOf resolves an external node id to its dense index. ok is false if
// the id is not part of the graph.
func (g *Graph) IndexOf(id string) (int32, bool) {
	idx, ok := g.idIndex[id]
	return idx, ok
}

// Outgoing returns the packed slice of edges leaving node i, in insertion
// order. The slice aliases the graph's internal storage and must not be
// mutated or retained past the query.
func (g *Graph) Outgoing(i int32) []Edge {
	return g.edges[g.head[i]:g.head[i+1]]
}

// EdgeBetween looks up the single edge from -> to, if any. Parallel edges
// between the same ordered pair are not supported by the source schema; the
// first one wins at build time.
func (g *Graph) EdgeBetween(from, to int32) (Edge, bool) {
	slot, ok := g.edgeSlot[EdgeKey{From: from, To: to}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[slot], true
}

// BuildGraph constructs an immutable Graph from pre-parsed node and edge
// records. It validates every invariant in §3 up front: no duplicate node
// ids, every edge endpoint resolves, every time_min is strictly positive,
// and no edge is a self-loop. On any violation it returns a *BuildError and
// no partial graph.
func BuildGraph(nodeRecords []NodeRecord, edgeRecords []EdgeRecord) (*Graph, *BuildError) {
	idIndex := make(map[string]int32, len(nodeRecords))
	nodes := make([]Node, 0, len(nodeRecords))

	for _, nr := range nodeRecords {
		if _, dup := idIndex[nr.ID]; dup {
			return nil, &BuildError{Kind: BuildErrorDuplicateNodeID, NodeID: nr.ID}
		}
		kind, _ := ParseNodeKind(nr.Kind)
		idIndex[nr.ID] = int32(len(nodes))
		nodes = append(nodes, Node{ID: nr.ID, Name: nr.Name, Lat: nr.Lat, Lon: nr.Lon, Kind: kind})
	}

	// First pass: validate and count out-degree per source so head[] can be
	// built without repeated slice growth.
	outDegree := make([]int32, len(nodes))
	for _, er := range edgeRecords {
		from, ok := idIndex[er.From]
		if !ok {
			return nil, &BuildError{Kind: BuildErrorUnknownEndpoint, NodeID: er.From}
		}
		if _, ok := idIndex[er.To]; !ok {
			return nil, &BuildError{Kind: BuildErrorUnknownEndpoint, NodeID: er.To}
		}
		if er.TimeMin <= 0 {
			return nil, &BuildError{Kind: BuildErrorNonPositiveTime, NodeID: er.From}
		}
		if er.From == er.To {
			return nil, &BuildError{Kind: BuildErrorSelfLoop, NodeID: er.From}
		}
		outDegree[from]++
	}

	head := make([]int32, len(nodes)+1)
	for i := 0; i < len(nodes); i++ {
		head[i+1] = head[i] + outDegree[i]
	}

	edges := make([]Edge, len(edgeRecords))
	cursor := make([]int32, len(nodes))
	copy(cursor, head[:len(nodes)])
	edgeSlot := make(map[EdgeKey]int32, len(edgeRecords))

	for _, er := range edgeRecords {
		from := idIndex[er.From]
		to := idIndex[er.To]
		mode, _ := ParseMode(er.Mode)
		slot := cursor[from]
		cursor[from]++
		edges[slot] = Edge{
			From:        from,
			To:          to,
			TimeMin:     er.TimeMin,
			Transfer:    er.Transfer,
			Stairs:      er.Stairs,
			BadPavement: er.BadPavement,
			FloodRisk:   er.FloodRisk,
			Mode:        mode,
		}
		key := EdgeKey{From: from, To: to}
		if _, seen := edgeSlot[key]; !seen {
			edgeSlot[key] = slot
		}
	}

	return &Graph{
		nodes:    nodes,
		idIndex:  idIndex,
		head:     head,
		edges:    edges,
		edgeSlot: edgeSlot,
	}, nil
}
