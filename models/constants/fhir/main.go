package fhir

import (
	"strainmap/api/models/constants"
)

const (
	ResourceTypePatient          constants.ResourceType = "Patient"
	ResourceTypeObservation      constants.ResourceType = "Observation"
	ResourceTypeDiagnosticReport constants.ResourceType = "DiagnosticReport"
	ResourceTypeBundle           constants.ResourceType = "Bundle"
)

const (
	// LOINC 69548-6 : "Genetic variant assessment"
	CodeGeneticVariantAssessment constants.LoincCode = "69548-6"

	// LOINC 81254-5 : "Genomic allele start-end"
	CodeGenomicAlleleStartEnd constants.LoincCode = "81254-5"
)

// standard HL7 extension carrying latitude/longitude sub-extensions
// on a Patient address
const GeolocationExtensionUrl = "http://hl7.org/fhir/StructureDefinition/geolocation"
