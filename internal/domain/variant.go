package domain

import "fmt"

// VariantInput is the caller-supplied variant description for an evidence
// lookup.
type VariantInput struct {
	Gene      string `json:"gene" binding:"required"`
	Variant   string `json:"variant" binding:"required"`
	TumorType string `json:"tumor_type,omitempty"`
}

// ToHGVS converts the input to gene:variant notation for direct API queries.
func (v VariantInput) ToHGVS() string {
	return fmt.Sprintf("%s:%s", v.Gene, v.Variant)
}

// Variant extends VariantInput with genomic coordinates when they are known.
type Variant struct {
	VariantInput

	Chromosome   string `json:"chromosome,omitempty"`
	Position     int64  `json:"position,omitempty"`
	Reference    string `json:"reference,omitempty"`
	Alternate    string `json:"alternate,omitempty"`
	TranscriptID string `json:"transcript_id,omitempty"`
}
