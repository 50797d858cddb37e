package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoomSeed is one entry of the room seed file.
type RoomSeed struct {
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	Capacity      int    `yaml:"capacity"`
	Location      string `yaml:"location"`
	AutoAccept    bool   `yaml:"auto_accept"`
	CalendarID    string `yaml:"calendar_id"`
	ResourceEmail string `yaml:"resource_email"`
}

type roomSeedFile struct {
	Rooms []RoomSeed `yaml:"rooms"`
}

// LoadRoomSeeds reads a YAML document of the form
//
//	rooms:
//	  - code: A
//	    name: 회의실 A
//	    capacity: 6
//
// Unknown keys are rejected so typos surface at startup.
func LoadRoomSeeds(path string) ([]RoomSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read room seed file: %w", err)
	}
	return ParseRoomSeeds(data)
}

// ParseRoomSeeds decodes the room seed document in data.
func ParseRoomSeeds(data []byte) ([]RoomSeed, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file roomSeedFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode room seed file: %w", err)
	}
	return file.Rooms, nil
}
