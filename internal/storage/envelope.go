package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"warga/internal/core"
)

// CurrentVersion is the schema version written for every key.
const CurrentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported schema version")

// Envelope wraps every persisted payload with its schema version.
// Values written before envelopes existed decode as version 0.
type Envelope struct {
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Migration upgrades a payload from version i to i+1.
type Migration func(json.RawMessage) (json.RawMessage, error)

// migrations holds the upgrade chain per key, indexed by source version.
// Keys without an entry upgrade unchanged.
var migrations = map[string][]Migration{
	KeyPayments: {canonicalizePayments},
}

// DecodeEnvelope parses a stored value. A bare JSON value without the
// version and payload fields is treated as a version 0 payload.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Envelope{}, errors.New("empty value")
	}
	if raw[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return Envelope{}, fmt.Errorf("decode value: %w", err)
		}
		v, hasVersion := probe["version"]
		p, hasPayload := probe["payload"]
		if hasVersion && hasPayload && len(probe) == 2 {
			var env Envelope
			if err := json.Unmarshal(v, &env.Version); err != nil {
				return Envelope{}, fmt.Errorf("decode version: %w", err)
			}
			env.Payload = p
			return env, nil
		}
	} else if !json.Valid(raw) {
		return Envelope{}, errors.New("decode value: invalid JSON")
	}
	return Envelope{Version: 0, Payload: json.RawMessage(raw)}, nil
}

// EncodeEnvelope marshals v at the current schema version.
func EncodeEnvelope(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return json.Marshal(Envelope{Version: CurrentVersion, Payload: payload})
}

// Migrate upgrades env to the current version for key.
func Migrate(key string, env Envelope) (json.RawMessage, error) {
	if env.Version > CurrentVersion || env.Version < 0 {
		return nil, fmt.Errorf("%s version %d: %w", key, env.Version, ErrUnsupportedVersion)
	}
	payload := env.Payload
	chain := migrations[key]
	for v := env.Version; v < CurrentVersion; v++ {
		if v >= len(chain) || chain[v] == nil {
			continue
		}
		next, err := chain[v](payload)
		if err != nil {
			return nil, fmt.Errorf("migrate %s from version %d: %w", key, v, err)
		}
		payload = next
	}
	return payload, nil
}

// canonicalizePayments rewrites legacy payment ids to the canonical form
// and collapses duplicate obligations, keeping the later entry.
func canonicalizePayments(raw json.RawMessage) (json.RawMessage, error) {
	var legacy []core.DuesPayment
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	out := make([]core.DuesPayment, 0, len(legacy))
	for _, p := range legacy {
		p.ID = core.PaymentID(p.Key())
		out = core.UpsertPayment(out, p)
	}
	return json.Marshal(out)
}
