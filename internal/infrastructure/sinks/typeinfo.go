package sinks

// ConfigField describes one setting a sink type reads.
type ConfigField struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number", "bool"
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
}

// SinkTypeInfo describes a sink type and the configuration it expects.
// Returned by Factory.ConfigSpec() and exposed via GET /api/1/telemetry/sinks.
type SinkTypeInfo struct {
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Fields      []ConfigField `json:"fields"`
}
