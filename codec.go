package movabletree

import (
	"encoding/json"
	"fmt"
)

// opWire is the JSON wire shape for a single Op, grounded on the
// tagged-union operation struct used for CRDT op logs in the example pack
// (a string "type" discriminator alongside the fields each variant needs).
// Kind is spelled out as "create"/"move" on the wire rather than shipping
// the raw OpKind byte, so a log captured by one version of this package
// stays legible (and diffable) even if OpKind's integer values ever shift.
type opWire struct {
	Lamport uint32  `json:"lamport"`
	Peer    uint64  `json:"peer"`
	Type    string  `json:"type"`
	Parent  *NodeID `json:"parent,omitempty"`
	Target  *NodeID `json:"target,omitempty"`
	Counter *uint32 `json:"counter,omitempty"`
}

func (op Op) toWire() opWire {
	w := opWire{
		Lamport: op.ID.Lamport,
		Peer:    op.ID.Peer,
		Counter: op.Counter,
	}
	switch op.Kind {
	case OpCreate:
		w.Type = "create"
		w.Parent = &op.Parent
	case OpMove:
		w.Type = "move"
		w.Target = &op.Target
		w.Parent = &op.Parent
	}
	return w
}

func (w opWire) toOp() (Op, error) {
	op := Op{
		ID:      ID{Lamport: w.Lamport, Peer: w.Peer},
		Counter: w.Counter,
	}
	switch w.Type {
	case "create":
		if w.Parent == nil {
			return Op{}, fmt.Errorf("movabletree: wire create op missing parent")
		}
		op.Kind = OpCreate
		op.Parent = *w.Parent
	case "move":
		if w.Parent == nil || w.Target == nil {
			return Op{}, fmt.Errorf("movabletree: wire move op missing parent or target")
		}
		op.Kind = OpMove
		op.Parent = *w.Parent
		op.Target = *w.Target
	default:
		return Op{}, fmt.Errorf("movabletree: unknown wire op type %q", w.Type)
	}
	return op, nil
}

// MarshalJSON implements json.Marshaler for a single Op.
func (op Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.toWire())
}

// UnmarshalJSON implements json.Unmarshaler for a single Op.
func (op *Op) UnmarshalJSON(data []byte) error {
	var w opWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.toOp()
	if err != nil {
		return err
	}
	*op = decoded
	return nil
}

// MarshalOps encodes a per-peer operation log (as returned by
// Replica.Ops) to JSON, suitable for shipping to another process or
// persisting to disk and later replaying through UnmarshalOps and Merge.
func MarshalOps(ops map[uint64][]Op) ([]byte, error) {
	return json.Marshal(ops)
}

// UnmarshalOps decodes a per-peer operation log produced by MarshalOps.
// The caller is expected to fold the result into a Replica via a merge
// helper rather than Apply, since these ops were not necessarily produced
// locally.
func UnmarshalOps(data []byte) (map[uint64][]Op, error) {
	var ops map[uint64][]Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}
