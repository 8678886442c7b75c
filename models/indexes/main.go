package indexes

import (
	"time"
)

// VariantDocument is the per-(sample, variant) document indexed to
// Elasticsearch after extraction: one called substitution projected
// onto the reference, together with the sample's clinical metadata.
type VariantDocument struct {
	SampleId   string `json:"sampleId"`
	PatientId  string `json:"patientId"`
	Pos        int    `json:"pos"`
	Ref        string `json:"ref"`
	Alt        string `json:"alt"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
	Conclusion string `json:"conclusion"`
	Role       string `json:"role"`

	RunId       string    `json:"runId"`
	CreatedTime time.Time `json:"createdTime"`
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_LONG = map[string]interface{}{"type": "long"}

var VARIANT_DOCUMENT_MAPPING = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"sampleId":    MAPPING_TEXT,
			"patientId":   MAPPING_TEXT,
			"pos":         MAPPING_LONG,
			"ref":         MAPPING_TEXT,
			"alt":         MAPPING_TEXT,
			"latitude":    MAPPING_TEXT,
			"longitude":   MAPPING_TEXT,
			"conclusion":  MAPPING_TEXT,
			"role":        MAPPING_TEXT,
			"runId":       MAPPING_TEXT,
			"createdTime": map[string]interface{}{"type": "date"},
		},
	},
}
