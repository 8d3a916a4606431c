package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// RawLesson carries timestamps as the provider sends them: ISO-8601 strings.
// Parsing happens during assembly so that one malformed record is scoped to
// its own lesson instead of failing the whole snapshot.
type RawLesson struct {
	Start     string `json:"start" mapstructure:"start"`
	End       string `json:"end" mapstructure:"end"`
	Professor string `json:"professor" mapstructure:"professor"`
	Summary   string `json:"summary" mapstructure:"summary"`
}

type RawBuilding struct {
	Code        string                 `json:"code" mapstructure:"code"`
	Name        string                 `json:"name" mapstructure:"name"`
	Coordinates [2]float64             `json:"coordinates" mapstructure:"coordinates"`
	Distance    float64                `json:"distance,omitempty" mapstructure:"distance"`
	Rooms       map[string][]RawLesson `json:"rooms" mapstructure:"rooms"`
}

// RawSnapshot is the unclassified input batch received from the provider.
type RawSnapshot struct {
	Buildings []RawBuilding `json:"buildings" mapstructure:"buildings"`
}

// SnapshotFromJson reads a raw snapshot from a JSON file.
func SnapshotFromJson(file string) (RawSnapshot, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return RawSnapshot{}, err
	}
	return SnapshotFromBytes(bytes)
}

// SnapshotFromBytes decodes a raw snapshot from JSON bytes.
func SnapshotFromBytes(bytes []byte) (RawSnapshot, error) {
	var snapshotJson map[string]any
	if err := json.Unmarshal(bytes, &snapshotJson); err != nil {
		return RawSnapshot{}, err
	}

	var raw RawSnapshot
	if err := decodeWeakly(snapshotJson, &raw); err != nil {
		return RawSnapshot{}, fmt.Errorf("cannot decode snapshot: %w", err)
	}
	return raw, nil
}

// decodeWeakly runs mapstructure with weak typing so JSON numbers land in
// whatever numeric kind the target declares.
func decodeWeakly(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
