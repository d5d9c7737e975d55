package searcher

import "time"

// SearchMetrics summarizes one Search call.
type SearchMetrics struct {
	StartTime    time.Time
	Duration     time.Duration
	Simulations  int
	FullPlayouts int // rollouts that reached a terminal state before the depth cap
	TreeSize     int // nodes created, root included
}

type Collector interface {
	Start()
	AddSimulation()
	AddFullPlayout()
	AddNode()
	Complete() SearchMetrics
}

type collector struct {
	startTime    time.Time
	simulations  int
	fullPlayouts int
	treeSize     int
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start() {
	*c = collector{startTime: time.Now()}
}

func (c *collector) AddSimulation() {
	c.simulations++
}

func (c *collector) AddFullPlayout() {
	c.fullPlayouts++
}

func (c *collector) AddNode() {
	c.treeSize++
}

func (c *collector) Complete() SearchMetrics {
	return SearchMetrics{
		StartTime:    c.startTime,
		Duration:     time.Since(c.startTime),
		Simulations:  c.simulations,
		FullPlayouts: c.fullPlayouts,
		TreeSize:     c.treeSize,
	}
}

type dummyCollector struct{}

// NewDummyCollector returns a collector that records nothing, for callers
// that do not ask for metrics.
func NewDummyCollector() Collector {
	return dummyCollector{}
}

func (dummyCollector) Start()                  {}
func (dummyCollector) AddSimulation()          {}
func (dummyCollector) AddFullPlayout()         {}
func (dummyCollector) AddNode()                {}
func (dummyCollector) Complete() SearchMetrics { return SearchMetrics{} }
