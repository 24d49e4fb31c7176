package snapshot

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/productmap/pkg/errors"
)

// Codec converts envelopes to and from bytes.
type Codec interface {
	Name() string
	Encode(env Envelope) ([]byte, error)
	Decode(data []byte, env *Envelope) error
}

var (
	// JSON encodes envelopes with goccy/go-json.
	JSON Codec = jsonCodec{}
	// YAML encodes envelopes with goccy/go-yaml.
	YAML Codec = yamlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func (jsonCodec) Decode(data []byte, env *Envelope) error {
	return json.Unmarshal(data, env)
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Encode(env Envelope) ([]byte, error) {
	return yaml.Marshal(env)
}

func (yamlCodec) Decode(data []byte, env *Envelope) error {
	return yaml.Unmarshal(data, env)
}

// CodecByName returns the codec called name ("json" or "yaml").
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return nil, errors.NewValidationError("snapshot.format", name, "must be json or yaml")
	}
}
