package searcher

import (
	"math"

	"mctsagent/game"
)

// node is one vertex of the search tree. A node exclusively owns its state
// and its children; children are appended in creation order and never
// reordered or removed. The parent pointer is non-owning and is only
// walked upward during backpropagation.
type node struct {
	state       game.State
	parent      *node
	actionTaken game.Action // nil for the root
	children    []*node
	visits      int
	rewards     float64
	config      *Config
}

func newNode(state game.State, parent *node, actionTaken game.Action, config *Config) *node {
	return &node{
		state:       state,
		parent:      parent,
		actionTaken: actionTaken,
		config:      config,
	}
}

func (n *node) terminated() bool {
	return n.state.IsTerminated()
}

func (n *node) averageReward() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.rewards / float64(n.visits)
}

// uctScore ranks n among its siblings. An unvisited node scores +Inf so
// every child is explored once before averages are compared. The log
// argument is clamped to 1 to keep the score finite while the parent has
// not been counted as visited yet.
func (n *node) uctScore(parentVisits int) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	if parentVisits < 1 {
		parentVisits = 1
	}
	exploration := n.config.ExplorationConstant *
		math.Sqrt(math.Log(float64(parentVisits))/float64(n.visits))
	return n.averageReward() + exploration
}
