package myvariant

import (
	"math"
	"strconv"
	"strings"

	"github.com/tumorboard-evidence-service/internal/domain"
)

// The MyVariant API is inconsistent about shapes: the same field may arrive
// as a single object or a list of objects, and scalar fields may arrive as a
// string or a list of strings. Shapes are normalized once at this boundary;
// the parsers never fail on malformed input, they degrade the affected field
// to absent instead.

// asObjectList normalizes an object-or-list value into a slice of objects.
// A single object becomes a one-element slice; non-object entries are
// silently skipped.
func asObjectList(v interface{}) []map[string]interface{} {
	switch data := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{data}
	case []interface{}:
		items := make([]map[string]interface{}, 0, len(data))
		for _, entry := range data {
			if obj, ok := entry.(map[string]interface{}); ok {
				items = append(items, obj)
			}
		}
		return items
	default:
		return nil
	}
}

// optString returns the value as *string when it is a string, nil otherwise.
func optString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

// optFloat returns the value as *float64 when it is numeric, nil otherwise.
func optFloat(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

// optInt returns the value as *int when it is numeric, nil otherwise.
func optInt(v interface{}) *int {
	if f, ok := v.(float64); ok {
		n := int(f)
		return &n
	}
	return nil
}

// stringify renders a scalar value as *string. JSON numbers are formatted
// without a fractional part when integral, so upstream integer IDs survive
// the float64 decoding intact.
func stringify(v interface{}) *string {
	switch value := v.(type) {
	case string:
		return &value
	case float64:
		var s string
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			s = strconv.FormatInt(int64(value), 10)
		} else {
			s = strconv.FormatFloat(value, 'f', -1, 64)
		}
		return &s
	case bool:
		s := strconv.FormatBool(value)
		return &s
	default:
		return nil
	}
}

// nestedName extracts the "name" field from a nested sub-object, treating a
// missing or wrongly-typed sub-object as absent.
func nestedName(v interface{}) *string {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return optString(obj["name"])
}

// parseCIViCEvidence parses raw CIViC data into evidence records. Items
// carrying a nested evidence_items collection are unwrapped one nested item
// per record; anything else is treated as a single flat evidence object.
func parseCIViCEvidence(civicData interface{}) []domain.CIViCEvidence {
	evidence := make([]domain.CIViCEvidence, 0)

	for _, item := range asObjectList(civicData) {
		if nested, ok := item["evidence_items"]; ok {
			for _, evItem := range asObjectList(nested) {
				evidence = append(evidence, domain.CIViCEvidence{
					EvidenceType:         optString(evItem["evidence_type"]),
					EvidenceLevel:        optString(evItem["evidence_level"]),
					EvidenceDirection:    optString(evItem["evidence_direction"]),
					ClinicalSignificance: optString(evItem["clinical_significance"]),
					Disease:              nestedName(evItem["disease"]),
					Drugs:                drugNames(evItem["drugs"]),
					Description:          optString(evItem["description"]),
					Source:               nestedName(evItem["source"]),
					Rating:               optFloat(evItem["rating"]),
				})
			}
			continue
		}

		evidence = append(evidence, domain.CIViCEvidence{
			EvidenceType:         optString(item["evidence_type"]),
			EvidenceLevel:        optString(item["evidence_level"]),
			EvidenceDirection:    optString(item["evidence_direction"]),
			ClinicalSignificance: optString(item["clinical_significance"]),
			Disease:              optString(item["disease"]),
			Drugs:                stringList(item["drugs"]),
			Description:          optString(item["description"]),
			Source:               optString(item["source"]),
			Rating:               optFloat(item["rating"]),
		})
	}

	return evidence
}

// drugNames extracts drug names from a list of drug sub-objects.
func drugNames(v interface{}) []string {
	entries, ok := v.([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if obj, ok := entry.(map[string]interface{}); ok {
			if name := optString(obj["name"]); name != nil {
				names = append(names, *name)
			}
		}
	}
	return names
}

// stringList normalizes a list value into plain strings, stringifying
// scalar entries and skipping the rest.
func stringList(v interface{}) []string {
	entries, ok := v.([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := stringify(entry); s != nil {
			values = append(values, *s)
		}
	}
	return values
}

// parseClinVarEvidence parses raw ClinVar data into evidence records.
func parseClinVarEvidence(clinvarData interface{}) []domain.ClinVarEvidence {
	evidence := make([]domain.ClinVarEvidence, 0)

	for _, item := range asObjectList(clinvarData) {
		record := domain.ClinVarEvidence{
			ReviewStatus:  optString(item["review_status"]),
			Conditions:    conditionNames(item["conditions"]),
			LastEvaluated: optString(item["last_evaluated"]),
			VariationID:   stringify(item["variation_id"]),
		}

		// clinical_significance arrives as a string or a list of strings;
		// a list is joined into one string.
		switch sig := item["clinical_significance"].(type) {
		case string:
			record.ClinicalSignificance = &sig
		case []interface{}:
			parts := make([]string, 0, len(sig))
			for _, entry := range sig {
				if s := stringify(entry); s != nil {
					parts = append(parts, *s)
				}
			}
			if len(parts) > 0 {
				joined := strings.Join(parts, ", ")
				record.ClinicalSignificance = &joined
			}
		}

		evidence = append(evidence, record)
	}

	return evidence
}

// conditionNames flattens the conditions field, which may be a single
// object, a list of objects, or a list of plain strings, into condition
// name strings.
func conditionNames(v interface{}) []string {
	conditions := make([]string, 0)

	switch data := v.(type) {
	case map[string]interface{}:
		if name := optString(data["name"]); name != nil && *name != "" {
			conditions = append(conditions, *name)
		}
	case []interface{}:
		for _, entry := range data {
			if obj, ok := entry.(map[string]interface{}); ok {
				if name := optString(obj["name"]); name != nil && *name != "" {
					conditions = append(conditions, *name)
				}
				continue
			}
			if s := stringify(entry); s != nil {
				conditions = append(conditions, *s)
			}
		}
	}

	return conditions
}

// parseCOSMICEvidence parses raw COSMIC data into evidence records. COSMIC
// items are flat; one record is emitted per input item.
func parseCOSMICEvidence(cosmicData interface{}) []domain.COSMICEvidence {
	evidence := make([]domain.COSMICEvidence, 0)

	for _, item := range asObjectList(cosmicData) {
		evidence = append(evidence, domain.COSMICEvidence{
			MutationID:            stringify(item["mutation_id"]),
			PrimarySite:           optString(item["primary_site"]),
			SiteSubtype:           optString(item["site_subtype"]),
			PrimaryHistology:      optString(item["primary_histology"]),
			HistologySubtype:      optString(item["histology_subtype"]),
			SampleCount:           optInt(item["sample_count"]),
			MutationSomaticStatus: optString(item["mutation_somatic_status"]),
		})
	}

	return evidence
}
