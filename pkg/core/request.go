package core

import "maps"

// Params is a key/value parameter mapping for public requests.
type Params map[string]any

// Clone returns a shallow copy of p. A nil Params clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// Merge copies other into a clone of p; keys in other win.
func (p Params) Merge(other Params) Params {
	out := p.Clone()
	maps.Copy(out, other)
	return out
}

// EnvelopeID is the fixed JSON-RPC request id. It is not used for multiplexing.
const EnvelopeID = 1

// Envelope is the JSON-RPC body of a private request.
type Envelope struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	ID     int    `json:"id"`
}

// NewEnvelope creates an Envelope for method. A nil params slice is sent as [].
func NewEnvelope(method string, params []any) *Envelope {
	if params == nil {
		params = []any{}
	}
	return &Envelope{
		Method: method,
		Params: params,
		ID:     EnvelopeID,
	}
}
