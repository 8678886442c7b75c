package extraction

import (
	"regexp"
	"strconv"
	"strings"

	"strainmap/api/models/constants/fhir"
	"strainmap/api/utils"

	"github.com/Jeffail/gabs"
)

/*
	A variant observation can encode its (position, allele) pair in
	several ways: a structured start-end component, or an HGVS
	expression buried in a codeable concept. Extraction runs an
	ordered chain of strategies over the observation; each strategy
	only fills fields still missing, and the chain stops as soon as
	the call is complete. The structured encoding therefore always
	wins over the textual one.
*/

type variantCall struct {
	pos    int
	hasPos bool
	alt    string
}

func (v *variantCall) complete() bool {
	return v.hasPos && v.alt != ""
}

type variantStrategy func(observation *gabs.Container, call *variantCall)

var variantStrategies = []variantStrategy{
	extractStructuredPosition,
	extractHgvsExpression,
}

func extractVariant(observation *gabs.Container) (int, string, bool) {
	var call variantCall
	for _, strategy := range variantStrategies {
		strategy(observation, &call)
		if call.complete() {
			break
		}
	}

	// an empty allele string means "no variant found"
	if !call.hasPos || call.alt == "" {
		return 0, "", false
	}
	return call.pos, call.alt, true
}

// extractStructuredPosition reads the genomic start position from a
// LOINC 81254-5 component, preferring the valueRange encoding over
// the bare valueInteger one.
func extractStructuredPosition(observation *gabs.Container, call *variantCall) {
	for _, component := range childArray(observation, "component") {
		for _, coding := range childArray(component, "code", "coding") {
			if stringValue(coding, "code") != string(fhir.CodeGenomicAlleleStartEnd) {
				continue
			}
			if component.Exists("valueRange") {
				if v, ok := floatValue(component, "valueRange", "low", "value"); ok {
					call.pos = int(v)
					call.hasPos = true
				}
			} else if v, ok := floatValue(component, "valueInteger"); ok {
				call.pos = int(v)
				call.hasPos = true
			}
		}
	}
}

var hgvsPattern = regexp.MustCompile(`g\.(\d+)[ACGTN]+>([ACGTN]+)`)

// extractHgvsExpression scans HGVS candidates from the observation's
// valueCodeableConcept codings (and those of its components) and
// fills whichever of position/allele is still missing from the first
// candidate that matches a genomic substitution expression.
func extractHgvsExpression(observation *gabs.Container, call *variantCall) {
	var candidates []string

	gather := func(container *gabs.Container) {
		for _, coding := range childArray(container, "valueCodeableConcept", "coding") {
			system := stringValue(coding, "system")
			code := stringValue(coding, "code")
			if strings.Contains(system, "hgvs") || strings.Contains(code, ":") {
				candidates = append(candidates, code)
			}
		}
	}

	gather(observation)
	for _, component := range childArray(observation, "component") {
		gather(component)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		match := hgvsPattern.FindStringSubmatch(candidate)
		if match == nil {
			continue
		}
		if !call.hasPos {
			if pos, err := strconv.Atoi(match[1]); err == nil {
				call.pos = pos
				call.hasPos = true
			}
		}
		if call.alt == "" {
			call.alt = match[2]
		}
		break
	}
}

// ---- shared gabs helpers, aliased for brevity

var (
	childArray  = utils.JsonChildren
	stringValue = utils.JsonString
	floatValue  = utils.JsonFloat
)
