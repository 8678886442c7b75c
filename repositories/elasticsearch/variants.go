package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"strainmap/api/models"
	"strainmap/api/models/indexes"
	"strainmap/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/mitchellh/mapstructure"
)

func GetVariantsBucketsByKeyword(cfg *models.Config, es *es7.Client, keyword string) (map[string]interface{}, error) {
	// begin building the request body.
	var buf bytes.Buffer
	aggMap := map[string]interface{}{
		"size": "0",
		"aggs": map[string]interface{}{
			"items": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": keyword,
					"size":  "10000", // increases the number of buckets returned (default is 10)
					"order": map[string]string{
						"_key": "asc",
					},
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(aggMap); err != nil {
		log.Fatalf("Error encoding aggMap: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		fmt.Println(buf.String())
	}

	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(VariantsIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
		es.Search.WithPretty(),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	resultString := res.String()
	if cfg.Debug {
		fmt.Println(resultString)
	}

	// Declared an empty interface
	result := make(map[string]interface{})

	// Unmarshal or Decode the JSON to the interface.
	// Known bug: response comes back with a preceding '[200 OK] ' which needs trimming
	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to get buckets by keyword: got '%s'", bracketString)
	}
	umErr := json.Unmarshal([]byte(jsonBodyString), &result)
	if umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	return result, nil
}

func GetVariantDocumentsBySampleId(cfg *models.Config, es *es7.Client, sampleId string) ([]indexes.VariantDocument, error) {
	var buf bytes.Buffer
	queryMap := map[string]interface{}{
		"size": 10000,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"sampleId": map[string]interface{}{
					"query": sampleId,
				},
			},
		},
		"sort": []map[string]interface{}{
			{"pos": map[string]string{"order": "asc"}},
		},
	}

	if err := json.NewEncoder(&buf).Encode(queryMap); err != nil {
		log.Fatalf("Error encoding queryMap: %s\n", err)
		return nil, err
	}

	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(VariantsIndex),
		es.Search.WithBody(&buf),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	resultString := res.String()

	bracketString, jsonBodyString := utils.GetLeadingStringInBetweenSquareBrackets(resultString)
	if !strings.Contains(bracketString, "200") {
		return nil, fmt.Errorf("failed to get variant documents: got '%s'", bracketString)
	}

	result := make(map[string]interface{})
	if umErr := json.Unmarshal([]byte(jsonBodyString), &result); umErr != nil {
		return nil, umErr
	}

	// gather data from "hits"
	hits, hitsOk := result["hits"].(map[string]interface{})
	if !hitsOk {
		return nil, fmt.Errorf("variant document response carries no hits")
	}

	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(hits["hits"], &allDocHits)

	// grab _source for each hit
	documents := make([]indexes.VariantDocument, 0, len(allDocHits))
	for _, hit := range allDocHits {
		source := hit["_source"]
		byteSlice, _ := json.Marshal(source)

		var document indexes.VariantDocument
		if err := json.Unmarshal(byteSlice, &document); err != nil {
			fmt.Println("failed to unmarshal:", err)
			continue
		}
		documents = append(documents, document)
	}

	return documents, nil
}
