package myvariant

import "strings"

// identifiers holds the cross-reference IDs and HGVS notations reconciled
// from a single search hit. Every field is best-effort: a missing or
// malformed structure leaves the field nil, it never aborts extraction.
type identifiers struct {
	CosmicID   *string
	NCBIGeneID *string
	DBSNPID    *string
	ClinVarID  *string

	HGVSGenomic    *string
	HGVSProtein    *string
	HGVSTranscript *string
}

// extractIdentifiers reconciles cross-reference identifiers and HGVS
// notations from the raw payload of a search hit.
func extractIdentifiers(hit map[string]interface{}) identifiers {
	ids := identifiers{
		CosmicID:   extractCosmicID(hit),
		NCBIGeneID: extractNCBIGeneID(hit),
		DBSNPID:    extractDBSNPID(hit),
		ClinVarID:  extractClinVarID(hit),
	}
	ids.extractHGVS(hit)
	return ids
}

// extractCosmicID pulls cosmic_id from the cosmic sub-object, handling both
// single-object and list shapes.
func extractCosmicID(hit map[string]interface{}) *string {
	for _, item := range asObjectList(hit["cosmic"]) {
		if id := stringify(item["cosmic_id"]); id != nil {
			return id
		}
		break // only the first entry is consulted
	}
	return nil
}

// extractNCBIGeneID prefers the top-level entrezgene field and falls back
// to the gene ID nested inside the dbSNP sub-object.
func extractNCBIGeneID(hit map[string]interface{}) *string {
	if id := stringify(hit["entrezgene"]); id != nil {
		return id
	}

	dbsnp, ok := hit["dbsnp"].(map[string]interface{})
	if !ok {
		return nil
	}
	gene, ok := dbsnp["gene"].(map[string]interface{})
	if !ok {
		return nil
	}
	return stringify(gene["geneid"])
}

// extractDBSNPID pulls the rsid from the dbSNP sub-object, normalized to
// carry the rs prefix.
func extractDBSNPID(hit map[string]interface{}) *string {
	dbsnp, ok := hit["dbsnp"].(map[string]interface{})
	if !ok {
		return nil
	}

	rsid := stringify(dbsnp["rsid"])
	if rsid == nil || *rsid == "" {
		return nil
	}

	if !strings.HasPrefix(*rsid, "rs") {
		normalized := "rs" + *rsid
		return &normalized
	}
	return rsid
}

// extractClinVarID pulls variant_id from the ClinVar sub-object, handling
// both single-object and list shapes.
func extractClinVarID(hit map[string]interface{}) *string {
	for _, item := range asObjectList(hit["clinvar"]) {
		if id := stringify(item["variant_id"]); id != nil {
			return id
		}
		break
	}
	return nil
}

// extractHGVS classifies HGVS notations into genomic, protein and
// transcript categories. First match per category wins; later matches for
// an already-filled category are ignored.
func (ids *identifiers) extractHGVS(hit map[string]interface{}) {
	// The hit's own _id is often genomic HGVS (e.g. "chr7:g.140453136A>T").
	if variantID := optString(hit["_id"]); variantID != nil && isGenomicNotation(*variantID) {
		ids.HGVSGenomic = variantID
	}

	switch hgvs := hit["hgvs"].(type) {
	case string:
		ids.classifyHGVS(hgvs)
	case []interface{}:
		for _, entry := range hgvs {
			if notation, ok := entry.(string); ok {
				ids.classifyHGVS(notation)
			}
		}
	}

	// Protein notation is sometimes only present in the CIViC variant name.
	if ids.HGVSProtein == nil {
		if civic, ok := hit["civic"].(map[string]interface{}); ok {
			if name := optString(civic["name"]); name != nil && strings.Contains(*name, ":p.") {
				ids.HGVSProtein = name
			}
		}
	}
}

// classifyHGVS assigns one notation to its category unless that category is
// already filled.
func (ids *identifiers) classifyHGVS(notation string) {
	switch {
	case isGenomicNotation(notation):
		if ids.HGVSGenomic == nil {
			ids.HGVSGenomic = &notation
		}
	case strings.Contains(notation, ":p."):
		if ids.HGVSProtein == nil {
			ids.HGVSProtein = &notation
		}
	case strings.Contains(notation, ":c."):
		if ids.HGVSTranscript == nil {
			ids.HGVSTranscript = &notation
		}
	}
}

// isGenomicNotation reports whether a notation carries a chromosome-style
// or RefSeq chromosome accession prefix.
func isGenomicNotation(notation string) bool {
	return strings.HasPrefix(notation, "chr") || strings.HasPrefix(notation, "NC_")
}
