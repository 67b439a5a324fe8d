package entities

import "encoding/json"

// ModuleManifest describes the handler table exposed by a loadable module.
type ModuleManifest struct {
	Module     string            `json:"module" yaml:"module"`
	SDKVersion string            `json:"sdk_version" yaml:"sdk_version"`
	Handlers   []HandlerManifest `json:"handlers" yaml:"handlers"`
}

// HandlerManifest describes one registered handler.
type HandlerManifest struct {
	Name         string          `json:"name" yaml:"name"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	EventSchema  json.RawMessage `json:"event_schema,omitempty" yaml:"-"`
	ResultSchema json.RawMessage `json:"result_schema,omitempty" yaml:"-"`
}
