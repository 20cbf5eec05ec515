package pipeline

import (
	"context"
	"fmt"

	"github.com/bull/docqa/internal/generator"
	"github.com/bull/docqa/internal/retriever"
)

// Node names of the default answer graph.
const (
	nodeRetrieve = "retrieve"
	nodeGenerate = "generate"
	nodeTerminal = "terminal"
)

// maxSteps bounds graph execution so a miswired edge cannot loop
// forever.
const maxSteps = 16

// State is the shared value threaded through graph nodes. Each node
// reads the fields earlier nodes populated and fills in its own.
type State struct {
	Question string
	TopK     int
	Passages []generator.Passage
	Answer   string
	Sources  []string
}

// NodeFunc is one graph step. It mutates the state and returns nothing;
// routing is held in the graph's edges, not in the nodes.
type NodeFunc func(ctx context.Context, s *State) error

// Graph runs the pipeline as an explicit state machine. The default
// wiring is retrieve -> generate -> terminal, and both the nodes and
// the edges can be replaced to extend the flow.
type Graph struct {
	deps
	nodes map[string]NodeFunc
	edges map[string]string
	entry string
}

// NewGraph creates the graph engine with the default topology.
func NewGraph(r *retriever.Retriever, g generator.Generator, budget int) *Graph {
	gr := &Graph{
		deps:  deps{retriever: r, generator: g, budget: budget},
		nodes: make(map[string]NodeFunc),
		edges: make(map[string]string),
		entry: nodeRetrieve,
	}
	gr.AddNode(nodeRetrieve, gr.retrieve)
	gr.AddNode(nodeGenerate, gr.generate)
	gr.SetEdge(nodeRetrieve, nodeGenerate)
	gr.SetEdge(nodeGenerate, nodeTerminal)
	return gr
}

// Name identifies the engine.
func (e *Graph) Name() string { return EngineGraph }

// AddNode registers or replaces a node.
func (e *Graph) AddNode(name string, fn NodeFunc) {
	e.nodes[name] = fn
}

// SetEdge routes execution from one node to the next.
func (e *Graph) SetEdge(from, to string) {
	e.edges[from] = to
}

// Answer walks the graph from its entry node until it reaches the
// terminal node, then reads the answer out of the final state.
func (e *Graph) Answer(ctx context.Context, question string, k int) (Answer, error) {
	state := &State{Question: question, TopK: k}

	current := e.entry
	for steps := 0; current != nodeTerminal; steps++ {
		if steps >= maxSteps {
			return Answer{}, fmt.Errorf("graph exceeded %d steps at node %q", maxSteps, current)
		}
		fn, ok := e.nodes[current]
		if !ok {
			return Answer{}, fmt.Errorf("graph has no node %q", current)
		}
		if err := fn(ctx, state); err != nil {
			return Answer{}, fmt.Errorf("node %s: %w", current, err)
		}
		next, ok := e.edges[current]
		if !ok {
			return Answer{}, fmt.Errorf("node %q has no outgoing edge", current)
		}
		current = next
	}

	return Answer{
		Text:    state.Answer,
		Sources: state.Sources,
		Engine:  EngineGraph,
	}, nil
}

// retrieve populates the state with the budget-fitted passages for the
// question.
func (e *Graph) retrieve(ctx context.Context, s *State) error {
	hits, err := e.retriever.Retrieve(ctx, s.Question, s.TopK)
	if err != nil {
		return err
	}
	s.Passages = e.toPassages(hits)
	s.Sources = sources(s.Passages)
	return nil
}

// generate answers the question from the passages already in the state.
func (e *Graph) generate(ctx context.Context, s *State) error {
	text, err := e.generator.Generate(ctx, s.Question, s.Passages)
	if err != nil {
		return err
	}
	s.Answer = text
	return nil
}
