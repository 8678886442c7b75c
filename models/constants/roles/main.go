package roles

import (
	"strainmap/api/models/constants"
)

const (
	// a regular cohort member under analysis
	Subject constants.MetadataRole = "Subject"

	// included for phylogenetic context only; its metadata is
	// overridden to mark it as background rather than a cohort subject
	Anchor constants.MetadataRole = "Anchor"

	// the synthetic sample carrying the unmodified reference genome
	Reference constants.MetadataRole = "Reference"
)
