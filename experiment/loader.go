// File: experiment/loader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package experiment

import (
	"bytes"
	"os"

	"github.com/momentics/schedbench/api"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// ParseCatalog decodes a YAML preset document:
//
//	presets:
//	  - id: 10
//	    description: two RR peers on CPU 2
//	    workers:
//	      - appId: 1
//	        workload: spin
//	        scheduling: {class: realtime, policy: SCHED_RR, priority: 50, pinnedCpu: 2}
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "parse presets", err)
	}
	return NewCatalog(doc.Presets...)
}

// LoadCatalog reads a YAML preset file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "read presets", err).WithContext("path", path)
	}
	return ParseCatalog(data)
}
