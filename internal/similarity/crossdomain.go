package similarity

import (
	"fmt"
	"strings"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	"github.com/forthing17-ops/signalcast-sub000/internal/textutil"
)

// domainKeywords scores content into one inferred domain. The domain with
// the most keyword hits wins; ties resolve in the listed order.
var domainKeywords = []struct {
	domain   core.Domain
	keywords []string
}{
	{core.DomainTechnology, []string{"software", "programming", "framework", "api", "cloud", "code", "developer", "infrastructure"}},
	{core.DomainBusiness, []string{"revenue", "market", "strategy", "customer", "startup", "growth", "sales", "pricing"}},
	{core.DomainDesign, []string{"design", "ux", "ui", "usability", "prototype", "accessibility", "typography", "visual"}},
	{core.DomainData, []string{"data", "analytics", "pipeline", "warehouse", "metrics", "etl", "dataset", "statistics"}},
	{core.DomainProduct, []string{"product", "roadmap", "feature", "user research", "backlog", "launch", "adoption"}},
	{core.DomainOperations, []string{"operations", "deployment", "incident", "monitoring", "reliability", "on-call", "sre"}},
	{core.DomainSecurity, []string{"security", "vulnerability", "encryption", "authentication", "exploit", "threat", "compliance"}},
	{core.DomainInnovation, []string{"innovation", "emerging", "breakthrough", "research", "experimental", "frontier", "disruption"}},
}

// bridgingKeywords are generic integration concepts that signal a workable
// bridge between two domains when present on both sides.
var bridgingKeywords = []string{
	"automation", "integration", "workflow", "platform", "collaboration",
	"scalability", "measurement", "process",
}

// InferDomain classifies a content item into one domain by keyword scoring.
// Technology is the default when nothing matches.
func InferDomain(item core.ContentItem) core.Domain {
	text := strings.ToLower(item.Title + " " + item.Body + " " + strings.Join(item.Topics, " "))

	best := core.DomainTechnology
	bestHits := 0
	for _, entry := range domainKeywords {
		hits := textutil.CountMatches(text, entry.keywords)
		if hits > bestHits {
			best = entry.domain
			bestHits = hits
		}
	}
	return best
}

// crossDomainTypeTable keys the connection type on the unordered domain
// pair. Pairs not listed default to complementary.
var crossDomainTypeTable = map[[2]core.Domain]core.CrossDomainType{
	{core.DomainBusiness, core.DomainTechnology}:   core.CrossTransformative,
	{core.DomainData, core.DomainTechnology}:       core.CrossSynergistic,
	{core.DomainDesign, core.DomainProduct}:        core.CrossSynergistic,
	{core.DomainBusiness, core.DomainProduct}:      core.CrossCausal,
	{core.DomainOperations, core.DomainSecurity}:   core.CrossComplementary,
	{core.DomainBusiness, core.DomainData}:         core.CrossCausal,
	{core.DomainInnovation, core.DomainTechnology}: core.CrossTransformative,
	{core.DomainBusiness, core.DomainInnovation}:   core.CrossCompetitive,
	{core.DomainOperations, core.DomainTechnology}: core.CrossComplementary,
	{core.DomainData, core.DomainProduct}:          core.CrossCausal,
}

// crossDomainNarrative is the qualitative text attached to one connection.
type crossDomainNarrative struct {
	opportunity string
	synergy     string
	risk        string
}

// crossDomainNarratives keys the narrative on the unordered domain pair and
// the connection type. Pairs or types without an entry fall back to the
// generic per-type templates below.
var crossDomainNarratives = map[[2]core.Domain]map[core.CrossDomainType]crossDomainNarrative{
	{core.DomainBusiness, core.DomainTechnology}: {
		core.CrossTransformative: {
			opportunity: "Technology shifts here could reshape how the business side operates",
			synergy:     "Technical capability gives the business ideas leverage they lack alone",
			risk:        "Adopting the technology without a business case burns effort on novelty",
		},
	},
	{core.DomainData, core.DomainTechnology}: {
		core.CrossSynergistic: {
			opportunity: "Data practice and engineering infrastructure compound each other",
			synergy:     "Better pipelines make better datasets, which justify better pipelines",
			risk:        "Tooling investment can outpace the questions the data actually answers",
		},
	},
	{core.DomainDesign, core.DomainProduct}: {
		core.CrossSynergistic: {
			opportunity: "Design insight sharpens what the product should even attempt",
			synergy:     "User research feeds design decisions that feed adoption",
			risk:        "Polish can mask a product direction users never asked for",
		},
	},
	{core.DomainBusiness, core.DomainProduct}: {
		core.CrossCausal: {
			opportunity: "Business pressure tends to decide which product bets get made",
			synergy:     "Revenue signals validate or kill product directions early",
			risk:        "Chasing near-term revenue can starve the product roadmap",
		},
	},
	{core.DomainOperations, core.DomainSecurity}: {
		core.CrossComplementary: {
			opportunity: "Operational discipline fills gaps security reviews leave open",
			synergy:     "Monitoring and incident practice double as detection and response",
			risk:        "Treating security as an ops checklist misses design-level threats",
		},
	},
	{core.DomainBusiness, core.DomainData}: {
		core.CrossCausal: {
			opportunity: "Business outcomes here trace back to how the data is used",
			synergy:     "Metrics ground strategy debates in observed behavior",
			risk:        "Decisions inherit every bias baked into the measurement",
		},
	},
	{core.DomainInnovation, core.DomainTechnology}: {
		core.CrossTransformative: {
			opportunity: "Emerging work on one side could reset the baseline for the other",
			synergy:     "Research results become leverage once engineering absorbs them",
			risk:        "Frontier claims often predate the engineering that makes them real",
		},
	},
	{core.DomainBusiness, core.DomainInnovation}: {
		core.CrossCompetitive: {
			opportunity: "Market discipline and frontier ideas pull in opposite directions here",
			synergy:     "Market pressure filters which novel ideas deserve investment",
			risk:        "Incumbent thinking can dismiss the disruption until it is late",
		},
	},
	{core.DomainOperations, core.DomainTechnology}: {
		core.CrossComplementary: {
			opportunity: "Operational experience fills gaps the build side leaves open",
			synergy:     "Deployment and reliability practice harden new technology",
			risk:        "Infrastructure change lands on the people carrying the pager",
		},
	},
	{core.DomainData, core.DomainProduct}: {
		core.CrossCausal: {
			opportunity: "Product direction here follows what the data reveals about usage",
			synergy:     "Adoption metrics close the loop on product decisions",
			risk:        "Optimizing measured behavior can erode unmeasured value",
		},
	},
}

// genericNarratives back the per-type fallback; %s placeholders take the
// two domain names in source, target order.
var genericNarratives = map[core.CrossDomainType]crossDomainNarrative{
	core.CrossSynergistic: {
		opportunity: "Combining %s and %s perspectives compounds the value of both",
		synergy:     "Progress on the %s side feeds the %s side and back",
		risk:        "Coupled %s and %s efforts stall together when one side slips",
	},
	core.CrossCompetitive: {
		opportunity: "%s and %s viewpoints compete here; comparing them sharpens judgment",
		synergy:     "Each of %s and %s exposes the blind spots of the other",
		risk:        "Framing %s against %s as a contest can bury workable middle ground",
	},
	core.CrossComplementary: {
		opportunity: "%s work fills gaps the %s side leaves open",
		synergy:     "%s and %s cover weaknesses the other cannot address alone",
		risk:        "Ownership of the seam between %s and %s is easy to drop",
	},
	core.CrossCausal: {
		opportunity: "Developments in %s tend to drive outcomes in %s",
		synergy:     "Leading signals in %s anticipate where %s is heading",
		risk:        "Mistaking %s correlation for the %s driver misleads planning",
	},
	core.CrossTransformative: {
		opportunity: "Ideas from %s could reshape how %s work is done",
		synergy:     "Cross-pollination compounds once %s and %s both adopt it",
		risk:        "Transformation talk between %s and %s often outruns what either can absorb",
	},
}

// crossDomainConnections emits a connection for every compared pair whose
// items fall in different domains with similarity above the cross-domain
// bar.
func (e *Engine) crossDomainConnections(items []core.ContentItem, comparisons []Comparison) []core.CrossDomainConnection {
	domainByContent := make(map[string]core.Domain, len(items))
	itemByID := make(map[string]core.ContentItem, len(items))
	for _, item := range items {
		domainByContent[item.ID] = InferDomain(item)
		itemByID[item.ID] = item
	}

	var connections []core.CrossDomainConnection
	for _, cmp := range comparisons {
		if cmp.Method == "skipped" || cmp.Similarity < e.cfg.CrossDomainMin {
			continue
		}

		domainA := domainByContent[cmp.A]
		domainB := domainByContent[cmp.B]
		if domainA == domainB {
			continue
		}

		connType := lookupCrossDomainType(domainA, domainB)
		itemA, itemB := itemByID[cmp.A], itemByID[cmp.B]
		narrative := narrativeFor(domainA, domainB, connType)

		connections = append(connections, core.CrossDomainConnection{
			SourceID:         cmp.A,
			TargetID:         cmp.B,
			SourceDomain:     domainA,
			TargetDomain:     domainB,
			Type:             connType,
			Similarity:       cmp.Similarity,
			BridgingConcepts: bridgingConcepts(itemA, itemB),
			Opportunity:      narrative.opportunity,
			Synergy:          narrative.synergy,
			Risk:             narrative.risk,
		})
	}
	return connections
}

// lookupCrossDomainType resolves the connection type for an unordered
// domain pair.
func lookupCrossDomainType(a, b core.Domain) core.CrossDomainType {
	if b < a {
		a, b = b, a
	}
	if t, ok := crossDomainTypeTable[[2]core.Domain{a, b}]; ok {
		return t
	}
	return core.CrossComplementary
}

// bridgingConcepts collects shared topics plus bridging keywords present in
// both items.
func bridgingConcepts(a, b core.ContentItem) []string {
	concepts := textutil.Intersection(a.Topics, b.Topics)

	textA := strings.ToLower(a.Title + " " + a.Body)
	textB := strings.ToLower(b.Title + " " + b.Body)
	for _, kw := range bridgingKeywords {
		if strings.Contains(textA, kw) && strings.Contains(textB, kw) {
			concepts = append(concepts, kw)
		}
	}
	return concepts
}

// narrativeFor resolves the qualitative notes for a connection: the
// pair-and-type entry when one exists, otherwise the generic per-type
// templates with the domain names filled in.
func narrativeFor(a, b core.Domain, connType core.CrossDomainType) crossDomainNarrative {
	keyA, keyB := a, b
	if keyB < keyA {
		keyA, keyB = keyB, keyA
	}
	if byType, ok := crossDomainNarratives[[2]core.Domain{keyA, keyB}]; ok {
		if narrative, ok := byType[connType]; ok {
			return narrative
		}
	}

	generic, ok := genericNarratives[connType]
	if !ok {
		generic = crossDomainNarrative{
			opportunity: "Bridging %s and %s broadens perspective",
			synergy:     "%s and %s context enrich each other",
			risk:        "The %s to %s translation can lose nuance",
		}
	}
	return crossDomainNarrative{
		opportunity: fmt.Sprintf(generic.opportunity, string(a), string(b)),
		synergy:     fmt.Sprintf(generic.synergy, string(a), string(b)),
		risk:        fmt.Sprintf(generic.risk, string(a), string(b)),
	}
}
