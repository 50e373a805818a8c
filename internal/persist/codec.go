package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasklist/internal/task"
)

// Codec names accepted by CodecByName.
const (
	CodecJSON = "json"
	CodecYAML = "yaml"
)

// ErrNotObject is returned when a sequence entry is truthy but not a record.
var ErrNotObject = errors.New("entry is not a task record")

// Codec converts a task sequence to and from its stored form.
type Codec interface {
	Name() string
	Marshal(tasks []task.Task) ([]byte, error)
	// Unmarshal decodes a sequence, dropping null and falsy entries.
	Unmarshal(data []byte) ([]task.Task, error)
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecYAML:
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec encodes with sonic in encoding/json compatible mode.
type JSONCodec struct{}

// Name implements Codec.
func (JSONCodec) Name() string { return CodecJSON }

// Marshal implements Codec. An empty or nil list encodes as [].
func (JSONCodec) Marshal(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return sonic.ConfigStd.Marshal(tasks)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte) ([]task.Task, error) {
	var raw []json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		// top-level null
		return nil, errors.New("not a sequence")
	}

	tasks := make([]task.Task, 0, len(raw))
	for i, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if falsyJSON(entry) {
			continue
		}
		if entry[0] != '{' {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNotObject)
		}
		var t task.Task
		if err := sonic.ConfigStd.Unmarshal(entry, &t); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func falsyJSON(entry []byte) bool {
	switch string(entry) {
	case "", "null", "false", `""`:
		return true
	}
	if f, err := strconv.ParseFloat(string(entry), 64); err == nil && f == 0 {
		return true
	}
	return false
}

// YAMLCodec encodes with go.yaml.in/yaml/v3.
type YAMLCodec struct{}

// Name implements Codec.
func (YAMLCodec) Name() string { return CodecYAML }

// Marshal implements Codec. An empty or nil list encodes as [].
func (YAMLCodec) Marshal(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return yaml.Marshal(tasks)
}

// Unmarshal implements Codec.
func (YAMLCodec) Unmarshal(data []byte) ([]task.Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, errors.New("not a sequence")
	}

	seq := doc.Content[0]
	tasks := make([]task.Task, 0, len(seq.Content))
	for i, n := range seq.Content {
		if n.Kind == yaml.ScalarNode && falsyYAML(n) {
			continue
		}
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("entry %d: %w", i, ErrNotObject)
		}
		var t task.Task
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func falsyYAML(n *yaml.Node) bool {
	switch n.ShortTag() {
	case "!!null":
		return true
	case "!!bool":
		return n.Value == "false"
	case "!!str":
		return n.Value == ""
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		return err == nil && f == 0
	}
	return false
}
