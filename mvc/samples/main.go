package samples

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"strainmap/api/contexts"
	"strainmap/api/models/dtos/errors"
	"strainmap/api/mvc"
	esRepo "strainmap/api/repositories/elasticsearch"

	"github.com/labstack/echo"
)

/*
	Handlers over the indexed variant documents: cohort-wide
	distributions and per-sample variant retrieval.
*/

func GetSamplesOverview(c echo.Context) error {
	fmt.Printf("[%s] - GetSamplesOverview hit!\n", time.Now())

	es, cfg, _ := mvc.RetrieveCommonElements(c)
	if es == nil {
		return c.JSON(http.StatusServiceUnavailable,
			errors.CreateSimpleServiceUnavailable("no elasticsearch instance is configured"))
	}

	resultsMap := map[string]interface{}{}
	var (
		resultsMux sync.Mutex
		wg         sync.WaitGroup
	)

	callGetBucketsByKeyword := func(key string, keyword string, _wg *sync.WaitGroup) {
		defer _wg.Done()

		results, bucketsErr := esRepo.GetVariantsBucketsByKeyword(cfg, es, keyword)
		if bucketsErr != nil {
			fmt.Printf("[%s] - Error getting %s buckets : %v\n", time.Now(), key, bucketsErr)
			return
		}

		// retrieve aggregations.items.buckets
		bucketsMapped := []interface{}{}
		if aggs, ok := results["aggregations"]; ok {
			aggsMapped := aggs.(map[string]interface{})

			if items, ok := aggsMapped["items"]; ok {
				itemsMapped := items.(map[string]interface{})

				if buckets := itemsMapped["buckets"]; ok {
					bucketsMapped = buckets.([]interface{})
				}
			}
		}

		individualKeyMap := map[string]interface{}{}
		// push results bucket to slice
		for _, bucket := range bucketsMapped {
			doc_key := fmt.Sprint(bucket.(map[string]interface{})["key"]) // ensure strings and numbers are expressed as strings
			doc_count := bucket.(map[string]interface{})["doc_count"]

			individualKeyMap[doc_key] = doc_count
		}

		resultsMux.Lock()
		resultsMap[key] = individualKeyMap
		resultsMux.Unlock()
	}

	// get distribution of samples
	wg.Add(1)
	go callGetBucketsByKeyword("sampleIDs", "sampleId.keyword", &wg)

	// get distribution of patients
	wg.Add(1)
	go callGetBucketsByKeyword("patientIDs", "patientId.keyword", &wg)

	// get distribution of clinical conclusions
	wg.Add(1)
	go callGetBucketsByKeyword("conclusions", "conclusion.keyword", &wg)

	// get distribution of cohort roles
	wg.Add(1)
	go callGetBucketsByKeyword("roles", "role.keyword", &wg)

	wg.Wait()

	return c.JSON(http.StatusOK, resultsMap)
}

func GetVariantsBySampleId(c echo.Context) error {
	sc := c.(*contexts.StrainMapContext)

	es, cfg, _ := mvc.RetrieveCommonElements(c)
	if es == nil {
		return c.JSON(http.StatusServiceUnavailable,
			errors.CreateSimpleServiceUnavailable("no elasticsearch instance is configured"))
	}

	documentsBySample := map[string]interface{}{}
	for _, sampleId := range sc.SampleIds {
		if sampleId == "*" {
			continue
		}

		documents, docsErr := esRepo.GetVariantDocumentsBySampleId(cfg, es, sampleId)
		if docsErr != nil {
			return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(docsErr.Error()))
		}
		documentsBySample[sampleId] = documents
	}

	return c.JSON(http.StatusOK, documentsBySample)
}
