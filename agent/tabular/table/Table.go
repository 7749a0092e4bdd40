package table

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Table stores the action values, eligibility traces, and visit counts
// of every state a tabular agent has encountered.
//
// Each state is interned to a dense integer id the first time it is
// seen, and its three rows are appended to contiguous arenas of
// NumActions entries each. Rows are never evicted, so the Table grows
// for as long as new states are encountered.
//
// The Table additionally tracks the set of live states: states whose
// trace row may hold a non-zero entry. Rows outside of the live set are
// guaranteed to be all zero, so only live rows need to be decayed or
// credited on each update.
type Table struct {
	actions int
	init    float64

	ids  map[StateKey]int
	keys []StateKey

	values []float64
	traces []float64
	visits []int

	live   []int
	inLive []bool
}

// New returns a new, empty Table for an environment with the given
// number of actions. Action values of newly created states are set to
// init.
func New(actions int, init float64) (*Table, error) {
	if actions <= 0 {
		return nil, fmt.Errorf("new: number of actions must be positive "+
			"(actions = %d)", actions)
	}

	return &Table{
		actions: actions,
		init:    init,
		ids:     make(map[StateKey]int),
	}, nil
}

// Actions returns the number of actions stored per state
func (t *Table) Actions() int {
	return t.actions
}

// Init returns the value that action values of new states are set to
func (t *Table) Init() float64 {
	return t.init
}

// Len returns the number of states stored in the Table
func (t *Table) Len() int {
	return len(t.keys)
}

// Lookup returns the id of a state and whether the state exists in the
// Table. Lookup never inserts a state.
func (t *Table) Lookup(k StateKey) (int, bool) {
	id, ok := t.ids[k]
	return id, ok
}

// ID returns the id of a state, inserting the state with freshly
// initialized rows if it has not been seen before
func (t *Table) ID(k StateKey) int {
	if id, ok := t.ids[k]; ok {
		return id
	}

	id := len(t.keys)
	t.ids[k] = id
	t.keys = append(t.keys, k)
	t.inLive = append(t.inLive, false)

	for i := 0; i < t.actions; i++ {
		t.values = append(t.values, t.init)
		t.traces = append(t.traces, 0)
		t.visits = append(t.visits, 0)
	}

	return id
}

// Key returns the StateKey of the state with the given id
func (t *Table) Key(id int) StateKey {
	return t.keys[id]
}

// Keys returns the StateKeys of all states in the Table, ordered by id
func (t *Table) Keys() []StateKey {
	keys := make([]StateKey, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Values returns the action values of a state. The returned slice
// aliases the Table's storage and is only valid until the next state
// is inserted.
func (t *Table) Values(id int) []float64 {
	lo, hi := t.bounds(id)
	return t.values[lo:hi:hi]
}

// Traces returns the eligibility traces of a state. The returned slice
// aliases the Table's storage and is only valid until the next state
// is inserted.
func (t *Table) Traces(id int) []float64 {
	lo, hi := t.bounds(id)
	return t.traces[lo:hi:hi]
}

// Visits returns the visit counts of a state. The returned slice
// aliases the Table's storage and is only valid until the next state
// is inserted.
func (t *Table) Visits(id int) []int {
	lo, hi := t.bounds(id)
	return t.visits[lo:hi:hi]
}

func (t *Table) bounds(id int) (int, int) {
	return id * t.actions, (id + 1) * t.actions
}

// Activate adds a state to the live set. It must be called whenever a
// trace of the state is set to a non-zero value.
func (t *Table) Activate(id int) {
	if !t.inLive[id] {
		t.inLive[id] = true
		t.live = append(t.live, id)
	}
}

// Live returns the ids of all states which may have a non-zero trace.
// The returned slice must not be modified, and is only valid until the
// next call to Activate or DecayTraces.
func (t *Table) Live() []int {
	return t.live
}

// DecayTraces multiplies the trace of every state by factor. Traces
// with a magnitude below cutoff are set to zero; a cutoff of 0 keeps
// every non-zero trace. States whose traces all become zero are
// removed from the live set.
func (t *Table) DecayTraces(factor, cutoff float64) {
	for i := 0; i < len(t.live); {
		id := t.live[i]
		row := t.Traces(id)
		floats.Scale(factor, row)

		nonZero := false
		for j := range row {
			if row[j] != 0 && (row[j] < cutoff && row[j] > -cutoff) {
				row[j] = 0
			}
			nonZero = nonZero || row[j] != 0
		}

		if nonZero {
			i++
			continue
		}

		// Swap-remove the dead state from the live set
		t.inLive[id] = false
		last := len(t.live) - 1
		t.live[i] = t.live[last]
		t.live = t.live[:last]
	}
}

// snapshot is the serialized form of a Table
type snapshot struct {
	Actions int
	Init    float64
	Keys    []StateKey
	Values  []float64
	Traces  []float64
	Visits  []int
	Live    []int
}

// GobEncode implements the gob.GobEncoder interface
func (t *Table) GobEncode() ([]byte, error) {
	s := snapshot{
		Actions: t.actions,
		Init:    t.init,
		Keys:    t.keys,
		Values:  t.values,
		Traces:  t.traces,
		Visits:  t.visits,
		Live:    t.live,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (t *Table) GobDecode(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	n := len(s.Keys) * s.Actions
	if s.Actions <= 0 || len(s.Values) != n || len(s.Traces) != n ||
		len(s.Visits) != n {
		return fmt.Errorf("gobDecode: corrupt table with %d states and "+
			"%d actions", len(s.Keys), s.Actions)
	}

	ids := make(map[StateKey]int, len(s.Keys))
	for id, k := range s.Keys {
		ids[k] = id
	}
	inLive := make([]bool, len(s.Keys))
	for _, id := range s.Live {
		if id < 0 || id >= len(s.Keys) {
			return fmt.Errorf("gobDecode: live state %d out of range", id)
		}
		inLive[id] = true
	}

	*t = Table{
		actions: s.Actions,
		init:    s.Init,
		ids:     ids,
		keys:    s.Keys,
		values:  s.Values,
		traces:  s.Traces,
		visits:  s.Visits,
		live:    s.Live,
		inLive:  inLive,
	}
	return nil
}
