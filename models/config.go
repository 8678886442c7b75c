package models

type Config struct {
	Debug bool `envconfig:"STRAINMAP_DEBUG"`

	Api struct {
		Url  string `envconfig:"STRAINMAP_API_URL"`
		Port string `envconfig:"STRAINMAP_API_INTERNAL_PORT" default:"5000"`
	}

	Fhir struct {
		Url          string `envconfig:"STRAINMAP_FHIR_URL"`
		ApiKey       string `envconfig:"STRAINMAP_FHIR_API_KEY"`
		TokenUrl     string `envconfig:"STRAINMAP_FHIR_TOKEN_URL"`
		ClientId     string `envconfig:"STRAINMAP_FHIR_CLIENT_ID"`
		ClientSecret string `envconfig:"STRAINMAP_FHIR_CLIENT_SECRET"`
		Scope        string `envconfig:"STRAINMAP_FHIR_SCOPE" default:"openid"`
		Since        string `envconfig:"STRAINMAP_FHIR_SINCE"`
		PageSize     int    `envconfig:"STRAINMAP_FHIR_PAGE_SIZE" default:"1000"`
	}

	Phylo struct {
		ReferencePath   string `envconfig:"STRAINMAP_REFERENCE_PATH"`
		ReferenceLabel  string `envconfig:"STRAINMAP_REFERENCE_LABEL" default:"H37Rv"`
		InputDirectory  string `envconfig:"STRAINMAP_INPUT_DIR"`
		AnchorDirectory string `envconfig:"STRAINMAP_ANCHOR_DIR"`
		OutputDirectory string `envconfig:"STRAINMAP_OUTPUT_DIR" default:"."`
	}

	Scheduler struct {
		Enabled bool   `envconfig:"STRAINMAP_SCHEDULER_ENABLED"`
		At      string `envconfig:"STRAINMAP_SCHEDULER_AT" default:"04:00:00"`
	}

	Elasticsearch struct {
		Url      string `envconfig:"STRAINMAP_ES_URL"`
		Username string `envconfig:"STRAINMAP_ES_USERNAME"`
		Password string `envconfig:"STRAINMAP_ES_PASSWORD"`
	}
}
