package spec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a rule document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not ".json" is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes raw document bytes and applies defaults.
// It does not validate; call Validate before using the document.
func Parse(data []byte, format Format) (*Document, error) {
	var raw map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &domain.SpecError{Reason: "invalid JSON", Err: err}
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &domain.SpecError{Reason: "invalid YAML", Err: err}
		}
	}
	if raw == nil {
		return nil, &domain.SpecError{Reason: "empty document"}
	}
	return Decode(raw)
}

// Decode converts a generic map (as produced by YAML/JSON decoding) into a
// Document. Unknown keys are rejected.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document
	if err := decodeInto(raw, &doc); err != nil {
		return nil, &domain.SpecError{Reason: "decode failed", Err: err}
	}
	doc.Normalize()
	return &doc, nil
}

// DecodeStage converts a generic map into a single Stage.
// Used by loaders that keep one document per stage.
func DecodeStage(id string, raw map[string]any) (*Stage, error) {
	var st Stage
	if err := decodeInto(raw, &st); err != nil {
		return nil, &domain.SpecError{Stage: id, Reason: "decode failed", Err: err}
	}
	st.ID = id
	st.applyDefaults()
	return &st, nil
}

func decodeInto(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			channelSourceHook,
			cycleSourceHook,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

var (
	channelSourceType = reflect.TypeOf(ChannelSource{})
	cycleSourceType   = reflect.TypeOf(CycleSource{})
)

// channelSourceHook accepts "record", a channel set name, or a list of channels.
func channelSourceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != channelSourceType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if v == RecordChannels {
			return ChannelSource{Record: true}, nil
		}
		return ChannelSource{Set: v}, nil
	case []any:
		list := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("channels[%d]: expected string, got %T", i, item)
			}
			list = append(list, s)
		}
		return ChannelSource{List: list}, nil
	case []string:
		return ChannelSource{List: v}, nil
	case ChannelSource:
		return v, nil
	case nil:
		return ChannelSource{}, nil
	default:
		return nil, fmt.Errorf("channels: expected %q, a set name or a list, got %T", RecordChannels, data)
	}
}

// cycleSourceHook accepts "observed" or a list of cycle numbers.
func cycleSourceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != cycleSourceType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		if v == ObservedCycles {
			return CycleSource{Observed: true}, nil
		}
		return nil, fmt.Errorf("cycles: expected %q or a list, got %q", ObservedCycles, v)
	case []any:
		list := make([]int, 0, len(v))
		for i, item := range v {
			n, ok := toInt(item)
			if !ok {
				return nil, fmt.Errorf("cycles[%d]: expected integer, got %v", i, item)
			}
			list = append(list, n)
		}
		return CycleSource{List: list}, nil
	case []int:
		return CycleSource{List: v}, nil
	case CycleSource:
		return v, nil
	case nil:
		return CycleSource{Observed: true}, nil
	default:
		return nil, fmt.Errorf("cycles: expected %q or a list, got %T", ObservedCycles, data)
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// Normalize fills defaults and stage ids. It is safe to call repeatedly.
func (d *Document) Normalize() {
	if d.Output.Filename == "" {
		d.Output.Filename = DefaultOutputFilename
	}
	if d.Output.Reference == "" {
		d.Output.Reference = DefaultReferenceFilename
	}
	for id, st := range d.Stages {
		if st == nil {
			continue
		}
		st.ID = id
		st.applyDefaults()
	}
}

func (s *Stage) applyDefaults() {
	if s.Layout == "" {
		s.Layout = LayoutDeclared
	}
	if s.Synthetic != nil {
		if s.Synthetic.Axis == "" {
			s.Synthetic.Axis = domain.KeyTile
		}
		for i := range s.Synthetic.Substitutions {
			if s.Synthetic.Substitutions[i].Target == "" {
				s.Synthetic.Substitutions[i].Target = TargetPath
			}
		}
	}
}

// Marshal serializes a document back to YAML.
func Marshal(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}
