package domain

// Evidence represents all evidence gathered for a single variant from the
// MyVariant.info aggregation API. It is assembled once per fetch and is not
// mutated afterwards. The three source slices are never nil, only empty, so
// callers can iterate without nil checks.
type Evidence struct {
	VariantID string `json:"variant_id"`
	Gene      string `json:"gene"`
	Variant   string `json:"variant"`

	CosmicID   *string `json:"cosmic_id,omitempty"`
	NCBIGeneID *string `json:"ncbi_gene_id,omitempty"`
	DBSNPID    *string `json:"dbsnp_id,omitempty"`
	ClinVarID  *string `json:"clinvar_id,omitempty"`

	HGVSGenomic    *string `json:"hgvs_genomic,omitempty"`
	HGVSProtein    *string `json:"hgvs_protein,omitempty"`
	HGVSTranscript *string `json:"hgvs_transcript,omitempty"`

	CIViC   []CIViCEvidence   `json:"civic"`
	ClinVar []ClinVarEvidence `json:"clinvar"`
	COSMIC  []COSMICEvidence  `json:"cosmic"`

	// RawData retains the upstream payload for audit and debugging.
	RawData map[string]interface{} `json:"raw_data,omitempty"`
}

// CIViCEvidence represents a single CIViC evidence item. Upstream fields are
// inconsistently present, so every field is optional.
type CIViCEvidence struct {
	EvidenceType         *string  `json:"evidence_type,omitempty"`
	EvidenceLevel        *string  `json:"evidence_level,omitempty"`
	EvidenceDirection    *string  `json:"evidence_direction,omitempty"`
	ClinicalSignificance *string  `json:"clinical_significance,omitempty"`
	Disease              *string  `json:"disease,omitempty"`
	Drugs                []string `json:"drugs,omitempty"`
	Description          *string  `json:"description,omitempty"`
	Source               *string  `json:"source,omitempty"`
	Rating               *float64 `json:"rating,omitempty"`
}

// ClinVarEvidence represents a single ClinVar record. A multi-valued
// clinical significance is joined into one string at parse time.
type ClinVarEvidence struct {
	ClinicalSignificance *string  `json:"clinical_significance,omitempty"`
	ReviewStatus         *string  `json:"review_status,omitempty"`
	Conditions           []string `json:"conditions,omitempty"`
	LastEvaluated        *string  `json:"last_evaluated,omitempty"`
	VariationID          *string  `json:"variation_id,omitempty"`
}

// COSMICEvidence represents a single COSMIC somatic mutation record.
type COSMICEvidence struct {
	MutationID            *string `json:"mutation_id,omitempty"`
	PrimarySite           *string `json:"primary_site,omitempty"`
	SiteSubtype           *string `json:"site_subtype,omitempty"`
	PrimaryHistology      *string `json:"primary_histology,omitempty"`
	HistologySubtype      *string `json:"histology_subtype,omitempty"`
	SampleCount           *int    `json:"sample_count,omitempty"`
	MutationSomaticStatus *string `json:"mutation_somatic_status,omitempty"`
}
