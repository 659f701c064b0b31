package heap

import (
	"github.com/oxischeme/oxischeme/internal/arena"
)

// Default arena capacities. Each is small enough that a test program
// can drive the collector without allocating megabytes, and large
// enough that ordinary scripts never see OutOfMemory.
const (
	DefaultConsCapacity       = 4096
	DefaultStringCapacity     = 2048
	DefaultActivationCapacity = 1024
	DefaultProcedureCapacity  = 512

	// DefaultGCThreshold is the number of allocations between one
	// collection and the next eligibility check.
	DefaultGCThreshold = 256
)

// Stats reports cumulative heap activity. LastFreedCons is not
// updated by the collector and stays zero.
type Stats struct {
	Allocations   uint64
	Collections   uint64
	LastFreedCons uint64
}

// Heap owns the four typed arenas, the root multiset, the symbol
// table, and the global activation. It is the single point of
// mutation for every GC'd allocation in the interpreter.
type Heap struct {
	arenaCons       *arena.Arena[Cons]
	arenaString     *arena.Arena[StringObj]
	arenaActivation *arena.Arena[ActivationFrame]
	arenaProcedure  *arena.Arena[Procedure]

	roots map[Ref]int

	symbols map[string]StringHandle

	global ActivationHandle

	sinceGC   int
	gcThreshold int

	stats Stats
}

// Config adjusts arena sizing and collection cadence.
type Config struct {
	ConsCapacity       int
	StringCapacity     int
	ActivationCapacity int
	ProcedureCapacity  int
	GCThreshold        int
}

// DefaultConfig returns the capacities used when New is called with no
// overrides.
func DefaultConfig() Config {
	return Config{
		ConsCapacity:       DefaultConsCapacity,
		StringCapacity:     DefaultStringCapacity,
		ActivationCapacity: DefaultActivationCapacity,
		ProcedureCapacity:  DefaultProcedureCapacity,
		GCThreshold:        DefaultGCThreshold,
	}
}

// New constructs a Heap with the given configuration and an empty
// global activation (frame 0).
func New(cfg Config) *Heap {
	h := &Heap{
		arenaCons:       arena.New[Cons]("cons", cfg.ConsCapacity),
		arenaString:     arena.New[StringObj]("string", cfg.StringCapacity),
		arenaActivation: arena.New[ActivationFrame]("activation", cfg.ActivationCapacity),
		arenaProcedure:  arena.New[Procedure]("procedure", cfg.ProcedureCapacity),
		roots:           make(map[Ref]int),
		symbols:         make(map[string]StringHandle),
		gcThreshold:     cfg.GCThreshold,
	}

	globalHandle, err := h.arenaActivation.Allocate()
	if err != nil {
		panic("heap.New: empty activation arena could not allocate frame 0")
	}

	h.global = globalHandle

	return h
}

// NewDefault constructs a Heap with DefaultConfig.
func NewDefault() *Heap {
	return New(DefaultConfig())
}

// Global returns the handle of the top-level activation, frame 0.
func (h *Heap) Global() ActivationHandle {
	return h.global
}

// Stats returns a snapshot of cumulative heap activity.
func (h *Heap) Stats() Stats {
	return h.stats
}

// addRoot increments ref's entry in the root multiset, adding it if
// absent.
func (h *Heap) addRoot(ref Ref) {
	h.roots[ref]++
}

// dropRoot decrements ref's entry in the root multiset, removing the
// key entirely once it reaches zero.
func (h *Heap) dropRoot(ref Ref) {
	n, ok := h.roots[ref]
	if !ok {
		return
	}

	if n <= 1 {
		delete(h.roots, ref)
		return
	}

	h.roots[ref] = n - 1
}

// maybeCollect runs a collection pass if enough allocations have
// happened since the last one, or if any arena is already full.
// Called before every allocation.
func (h *Heap) maybeCollect() {
	h.sinceGC++

	if h.sinceGC >= h.gcThreshold || h.anyArenaFull() {
		h.CollectGarbage()
	}
}

// anyArenaFull reports whether any of the four arenas has no free
// slots, forcing an immediate collection regardless of threshold.
func (h *Heap) anyArenaFull() bool {
	return h.arenaCons.IsFull() || h.arenaString.IsFull() ||
		h.arenaActivation.IsFull() || h.arenaProcedure.IsFull()
}
