// Package snapshot converts the whole story collection to and from a
// single blob for persistence.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/storyweaver/pkg/story"
)

// Version is the current envelope version written by Save.
const Version = 1

// ErrUnsupportedVersion is returned by Decode for envelopes newer than Version.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int            `json:"version" yaml:"version"`
	Stories []*story.Story `json:"stories" yaml:"stories"`
}

// Save encodes the collection as a versioned JSON envelope.
func Save(stories []*story.Story) ([]byte, error) {
	if stories == nil {
		stories = []*story.Story{}
	}
	data, err := json.Marshal(envelope{Version: Version, Stories: stories})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a JSON snapshot. Both the envelope and a bare array of
// stories are accepted. Empty input decodes to an empty collection.
func Decode(data []byte) ([]*story.Story, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []*story.Story{}, nil
	}

	if data[0] == '[' {
		var stories []*story.Story
		if err := json.Unmarshal(data, &stories); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story list: %w", err)
		}
		return compact(stories), nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if env.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return compact(env.Stories), nil
}

// Load is Decode for callers that must always have a collection:
// missing or corrupt input yields an empty one.
func Load(data []byte) []*story.Story {
	stories, err := Decode(data)
	if err != nil {
		return []*story.Story{}
	}
	return stories
}

// SaveYAML encodes the collection as a YAML envelope, for hand-edited files.
func SaveYAML(stories []*story.Story) ([]byte, error) {
	if stories == nil {
		stories = []*story.Story{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(envelope{Version: Version, Stories: stories}); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush YAML snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML envelope.
func DecodeYAML(data []byte) ([]*story.Story, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*story.Story{}, nil
	}
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML snapshot: %w", err)
	}
	if env.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return compact(env.Stories), nil
}

// LoadYAML is the YAML counterpart of Load.
func LoadYAML(data []byte) []*story.Story {
	stories, err := DecodeYAML(data)
	if err != nil {
		return []*story.Story{}
	}
	return stories
}

func compact(stories []*story.Story) []*story.Story {
	out := make([]*story.Story, 0, len(stories))
	for _, st := range stories {
		if st != nil {
			out = append(out, st)
		}
	}
	return out
}
