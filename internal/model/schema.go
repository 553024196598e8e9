package model

// SchemaDescriptor is a schema document as held by the external schema store.
// Only a handful of display fields are read from it; every one of them is optional.
type SchemaDescriptor map[string]any

// SchemaView is the client-facing projection of a SchemaDescriptor.
type SchemaView struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	FaIcon      *string `json:"faIcon"`
	Plural      *string `json:"plural"`
	Description *string `json:"description"`
	Inline      bool    `json:"inline"`
}
