package vault

import (
	"encoding/json"

	"xdao.co/vault/keys"
)

// Tag is the stable discriminant of a key kind in a vault document.
//
// Tags are part of the persisted format and must never change once released.
type Tag string

const (
	TagSigning Tag = "Signing"
)

// Key is one capability held by a vault. Signing is the only kind today;
// further kinds are added as new tags without touching existing documents.
type Key interface {
	Tag() Tag
	// Public returns the same key with all secret material removed.
	Public() Key

	body() (json.RawMessage, error)
}

// Signing is the Key variant holding a signing keypair.
type Signing struct {
	Key *keys.SigningKey
}

func (s Signing) Tag() Tag    { return TagSigning }
func (s Signing) Public() Key { return Signing{Key: s.Key.Redacted()} }

func (s Signing) body() (json.RawMessage, error) {
	if s.Key == nil {
		return nil, newError(KindEncode, "VAULT-ENC-001", "nil signing key")
	}
	return json.Marshal(s.Key)
}

var keyDecoders = map[Tag]func(json.RawMessage) (Key, error){
	TagSigning: func(b json.RawMessage) (Key, error) {
		var sk keys.SigningKey
		if err := json.Unmarshal(b, &sk); err != nil {
			return nil, err
		}
		return Signing{Key: &sk}, nil
	},
}

// publicKeys maps every entry to its public counterpart, keeping order.
func publicKeys(in []Key) []Key {
	out := make([]Key, len(in))
	for i, k := range in {
		out[i] = k.Public()
	}
	return out
}

// keyEntry is the externally tagged wire form of a Key: {"<Tag>": {...}}.
type keyEntry struct {
	Key
}

func (e keyEntry) MarshalJSON() ([]byte, error) {
	if e.Key == nil {
		return nil, newError(KindEncode, "VAULT-ENC-001", "nil key entry")
	}
	body, err := e.Key.body()
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[Tag]json.RawMessage{e.Key.Tag(): body})
}

func (e *keyEntry) UnmarshalJSON(b []byte) error {
	var m map[Tag]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return wrapError(KindDocument, "VAULT-DOC-004", "invalid key entry", err)
	}
	if len(m) != 1 {
		return newError(KindDocument, "VAULT-DOC-004", "key entry must have exactly one tag")
	}
	for tag, body := range m {
		decode, ok := keyDecoders[tag]
		if !ok {
			return newError(KindUnknownKey, "VAULT-DOC-101", "unknown key tag: "+string(tag))
		}
		k, err := decode(body)
		if err != nil {
			return wrapError(KindDocument, "VAULT-DOC-004", "invalid "+string(tag)+" key", err)
		}
		e.Key = k
	}
	return nil
}
