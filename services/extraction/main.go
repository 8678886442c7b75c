package extraction

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"strainmap/api/models/constants"
	"strainmap/api/models/constants/fhir"
	"strainmap/api/phylo"

	"github.com/Jeffail/gabs"
	linq "github.com/ahmetb/go-linq"
)

/*
	VariantExtractor: turns one raw FHIR record bundle into a
	phylo.Sample (variant map + clinical metadata). The bundle schema
	allows several equivalent encodings of the same variant; see
	strategies.go for the prioritized extraction chain.
*/

// ParseBundle extracts a sample from raw FHIR bundle JSON. The
// sample id is derived from sourceName (typically the bundle's file
// name). A bundle that is not valid JSON yields an error; a bundle
// with no usable entries yields a sample with no variants, which
// still receives a full row of reference calls downstream.
func ParseBundle(raw []byte, sourceName string) (phylo.Sample, error) {
	parsed, err := gabs.ParseJSON(raw)
	if err != nil {
		return phylo.Sample{}, fmt.Errorf("parsing FHIR bundle %s: %w", sourceName, err)
	}

	sampleId := SampleIdFromFileName(sourceName)
	sample := phylo.Sample{
		Id:       sampleId,
		Variants: map[int]string{},
		Metadata: phylo.NewMetadata(sampleId),
	}

	for _, entry := range childArray(parsed, "entry") {
		resource := entry.S("resource")
		if resource == nil {
			continue
		}

		switch constants.ResourceType(stringValue(resource, "resourceType")) {
		case fhir.ResourceTypePatient:
			applyPatient(resource, &sample.Metadata)

		case fhir.ResourceTypeDiagnosticReport:
			applyDiagnosticReport(resource, &sample.Metadata)

		case fhir.ResourceTypeObservation:
			if !isVariantAssessment(resource) {
				continue
			}
			if pos, alt, found := extractVariant(resource); found {
				sample.Variants[pos] = alt
			}
		}
	}

	return sample, nil
}

// SampleIdFromFileName strips the conventional bundle suffixes from
// a file name, mirroring how bundles are written by the acquisition
// layer (<patient>.fhir.json, sometimes <patient>.merged.fhir.json).
func SampleIdFromFileName(name string) string {
	base := path.Base(name)
	base = strings.ReplaceAll(base, ".fhir.json", "")
	base = strings.ReplaceAll(base, ".merged", "")
	base = strings.ReplaceAll(base, ".json", "")
	return base
}

func applyPatient(resource *gabs.Container, metadata *phylo.Metadata) {
	if id := stringValue(resource, "id"); id != "" {
		metadata.PatientId = id
	}

	for _, address := range childArray(resource, "address") {
		for _, extension := range childArray(address, "extension") {
			if stringValue(extension, "url") != fhir.GeolocationExtensionUrl {
				continue
			}
			for _, sub := range childArray(extension, "extension") {
				switch stringValue(sub, "url") {
				case "latitude":
					if v, ok := floatValue(sub, "valueDecimal"); ok {
						metadata.Latitude = formatDecimal(v)
					}
				case "longitude":
					if v, ok := floatValue(sub, "valueDecimal"); ok {
						metadata.Longitude = formatDecimal(v)
					}
				}
			}
		}
	}
}

func applyDiagnosticReport(resource *gabs.Container, metadata *phylo.Metadata) {
	var conclusions []string
	for _, conclusionCode := range childArray(resource, "conclusionCode") {
		if text := stringValue(conclusionCode, "text"); text != "" {
			conclusions = append(conclusions, text)
		}
	}
	if conclusion := stringValue(resource, "conclusion"); conclusion != "" {
		conclusions = append(conclusions, conclusion)
	}

	if len(conclusions) == 0 {
		return
	}

	// unique, order preserving: first occurrence wins
	var unique []string
	linq.From(conclusions).Distinct().ToSlice(&unique)

	metadata.Conclusion = strings.Join(unique, "; ")
}

func isVariantAssessment(resource *gabs.Container) bool {
	for _, coding := range childArray(resource, "code", "coding") {
		if stringValue(coding, "code") == string(fhir.CodeGeneticVariantAssessment) {
			return true
		}
	}
	return false
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
