package qlambda

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/qlambda/agent/tabular/table"
)

// snapshot is the serialized form of a QLambda agent
type snapshot struct {
	Config     Config
	NumActions int
	Seed       uint64
	GlobalStep int
	Table      *table.Table
	RNG        []byte
}

// GobEncode implements the gob.GobEncoder interface. The encoded agent
// includes the state of its random source, so a decoded agent makes
// the same choices the original would have.
func (q *QLambda) GobEncode() ([]byte, error) {
	rng, err := q.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: could not encode rng: %v", err)
	}

	s := snapshot{
		Config:     q.config,
		NumActions: q.numActions,
		Seed:       q.seed,
		GlobalStep: q.globalStep,
		Table:      q.table,
		RNG:        rng,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. Any cached
// transition is discarded and the decoded agent is in training mode.
func (q *QLambda) GobDecode(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	restored, err := New(s.NumActions, s.Config, s.Seed)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	if s.Table == nil || s.Table.Actions() != s.NumActions {
		return fmt.Errorf("gobDecode: table does not match %d actions",
			s.NumActions)
	}
	restored.table = s.Table
	restored.globalStep = s.GlobalStep

	src := &rand.PCGSource{}
	if err := src.UnmarshalBinary(s.RNG); err != nil {
		return fmt.Errorf("gobDecode: could not decode rng: %v", err)
	}
	restored.src = src
	restored.setPolicies()

	*q = *restored
	return nil
}

// Save writes the agent to w
func (q *QLambda) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(q); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// Load reads an agent previously written with Save
func Load(r io.Reader) (*QLambda, error) {
	q := &QLambda{}
	if err := gob.NewDecoder(r).Decode(q); err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}
	return q, nil
}
