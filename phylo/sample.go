package phylo

/*
	Core data model for the phylogenetics pipeline.

	A Sample is one cohort member's called single-nucleotide
	variants (1-based reference position -> allele string) plus
	the clinical metadata extracted alongside them. Samples are
	created once by the extraction layer and never mutated
	afterwards; every field the extraction layer could not
	populate holds "NA".
*/

const NotAvailable = "NA"

type Metadata struct {
	SampleId   string `json:"sample_id"`
	PatientId  string `json:"patient_id"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Conclusion string `json:"conclusion"`
}

type Sample struct {
	Id       string         `json:"id"`
	Variants map[int]string `json:"variants"`
	Metadata Metadata       `json:"metadata"`
}

func NewMetadata(sampleId string) Metadata {
	return Metadata{
		SampleId:   sampleId,
		PatientId:  NotAvailable,
		Latitude:   NotAvailable,
		Longitude:  NotAvailable,
		Conclusion: NotAvailable,
	}
}
