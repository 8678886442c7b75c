package elasticsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"strainmap/api/models/indexes"

	es7 "github.com/elastic/go-elasticsearch/v7"
)

const VariantsIndex = "variants"

// SetupVariantsIndex creates the variants index with its mapping if
// it does not exist yet; re-running it is a no-op.
func SetupVariantsIndex(es *es7.Client) error {
	existsRes, existsErr := es.Indices.Exists([]string{VariantsIndex})
	if existsErr != nil {
		return existsErr
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == 200 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(indexes.VARIANT_DOCUMENT_MAPPING); err != nil {
		log.Fatalf("Error encoding variants index mapping: %s\n", err)
		return err
	}

	createRes, createErr := es.Indices.Create(
		VariantsIndex,
		es.Indices.Create.WithBody(&buf),
	)
	if createErr != nil {
		return createErr
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index %s : %s", VariantsIndex, createRes.String())
	}

	fmt.Printf("[%s] - Created index %s\n", time.Now(), VariantsIndex)
	return nil
}
