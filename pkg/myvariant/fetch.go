package myvariant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tumorboard-evidence-service/internal/domain"
)

// evidenceFields is the fixed whitelist of upstream fields requested on
// every search call. It bounds response size to the CIViC, ClinVar, COSMIC
// and identifier data this client consumes.
var evidenceFields = []string{
	"civic",
	"clinvar",
	"cosmic",
	"dbsnp",
	"cadd",
	"entrezgene",
	"cosmic.cosmic_id",
	"clinvar.variant_id",
	"dbsnp.rsid",
	"hgvs",
}

// queryStrategies returns the ordered query formulations for a gene/variant
// pair. The upstream search is an imprecise free-text interface, so the
// highest-precision formulation goes first:
//  1. gene with protein-change notation ("BRAF p.V600E")
//  2. colon-joined direct notation ("BRAF:V600E")
//  3. plain space-joined ("BRAF V600E")
func queryStrategies(gene, variant string) []string {
	protein := variant
	if !strings.HasPrefix(variant, "p.") {
		protein = "p." + variant
	}

	return []string{
		fmt.Sprintf("%s %s", gene, protein),
		fmt.Sprintf("%s:%s", gene, variant),
		fmt.Sprintf("%s %s", gene, variant),
	}
}

// FetchEvidence fetches and aggregates variant evidence from CIViC, ClinVar
// and COSMIC via the MyVariant search endpoint. Query strategies are tried
// in order until one yields hits; zero hits across all strategies is a
// valid outcome and returns an empty-evidence record, not an error. Only
// the first hit is used when multiple are returned.
func (c *Client) FetchEvidence(ctx context.Context, gene, variant string) (ev *domain.Evidence, err error) {
	// Final containment: the parsers degrade malformed records instead of
	// failing, so anything escaping here is an internal defect that must
	// still surface as the single client-error kind.
	defer func() {
		if r := recover(); r != nil {
			ev = nil
			err = domain.NewAPIError(domain.ErrParseFailure, fmt.Sprintf("failed to parse evidence: %v", r))
		}
	}()

	var (
		result map[string]interface{}
		query  string
	)

	for i, q := range queryStrategies(gene, variant) {
		query = q
		result, err = c.Query(ctx, q, evidenceFields)
		if err != nil {
			return nil, err
		}

		if totalHits(result) > 0 {
			c.logger.WithFields(logrus.Fields{
				"gene":     gene,
				"variant":  variant,
				"query":    q,
				"strategy": i + 1,
			}).Debug("Query strategy yielded hits")
			break
		}

		c.logger.WithFields(logrus.Fields{
			"gene":     gene,
			"variant":  variant,
			"query":    q,
			"strategy": i + 1,
		}).Debug("Query strategy yielded zero hits")
	}

	hits := asObjectList(result["hits"])
	if len(hits) == 0 {
		// Absence of evidence is expected for rare or obscure variants.
		return &domain.Evidence{
			VariantID: query,
			Gene:      gene,
			Variant:   variant,
			CIViC:     []domain.CIViCEvidence{},
			ClinVar:   []domain.ClinVarEvidence{},
			COSMIC:    []domain.COSMICEvidence{},
			RawData:   result,
		}, nil
	}

	// Use the first hit (most relevant).
	hit := hits[0]

	ids := extractIdentifiers(hit)

	variantID := query
	if id := optString(hit["_id"]); id != nil {
		variantID = *id
	}

	return &domain.Evidence{
		VariantID:      variantID,
		Gene:           gene,
		Variant:        variant,
		CosmicID:       ids.CosmicID,
		NCBIGeneID:     ids.NCBIGeneID,
		DBSNPID:        ids.DBSNPID,
		ClinVarID:      ids.ClinVarID,
		HGVSGenomic:    ids.HGVSGenomic,
		HGVSProtein:    ids.HGVSProtein,
		HGVSTranscript: ids.HGVSTranscript,
		CIViC:          parseCIViCEvidence(hit["civic"]),
		ClinVar:        parseClinVarEvidence(hit["clinvar"]),
		COSMIC:         parseCOSMICEvidence(hit["cosmic"]),
		RawData:        hit,
	}, nil
}

// totalHits reads the total-hit count from a search response.
func totalHits(result map[string]interface{}) int {
	if total, ok := result["total"].(float64); ok {
		return int(total)
	}
	return 0
}
