package acquisition

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"
	"time"

	"strainmap/api/models"

	"github.com/stretchr/testify/assert"
)

func newTestClient(serverUrl string) *Client {
	cfg := &models.Config{}
	cfg.Fhir.Url = serverUrl
	cfg.Fhir.PageSize = 1000

	client := NewClient(cfg)
	client.RetryMaxAttempts = 1
	client.RetryInitialInterval = time.Millisecond
	return client
}

func observationPage(subjects []string, nextUrl string) map[string]interface{} {
	entries := []interface{}{}
	for _, subject := range subjects {
		entries = append(entries, map[string]interface{}{
			"resource": map[string]interface{}{
				"resourceType": "Observation",
				"subject":      map[string]interface{}{"reference": subject},
			},
		})
	}
	page := map[string]interface{}{"entry": entries}
	if nextUrl != "" {
		page["link"] = []interface{}{
			map[string]interface{}{"relation": "next", "url": nextUrl},
		}
	}
	return page
}

func TestDiscoverPatientsWithPathFallbackAndPagination(t *testing.T) {
	requestedPaths := []string{}

	mux := http.NewServeMux()
	mux.HandleFunc("/fhir/Observation", func(w http.ResponseWriter, r *http.Request) {
		requestedPaths = append(requestedPaths, r.URL.Path)
		assert.Equal(t, "application/fhir+json", r.Header.Get("Accept"))

		var page map[string]interface{}
		if r.URL.Query().Get("page") == "2" {
			page = observationPage([]string{"Patient/P2", "Group/G1"}, "")
		} else {
			assert.Equal(t, "69548-6", r.URL.Query().Get("code"))
			assert.Equal(t, "1000", r.URL.Query().Get("_count"))
			// relative next link, resolved against the active base
			page = observationPage([]string{"Patient/P1", "Patient/P1"}, "/fhir/Observation?page=2")
		}
		json.NewEncoder(w).Encode(page)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	patients, err := client.DiscoverPatients()

	assert.Nil(t, err)
	assert.Equal(t, []string{"P1", "P2"}, patients, "duplicates and non-patient subjects are dropped")
	// the bare /Observation path 404s, so everything lands on /fhir
	assert.NotEmpty(t, requestedPaths)
	for _, p := range requestedPaths {
		assert.Equal(t, "/fhir/Observation", p)
	}
}

func TestDiscoverPatientsSinceFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Observation", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gt2026-01-01", r.URL.Query().Get("_lastUpdated"))
		json.NewEncoder(w).Encode(observationPage(nil, ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	client.Config.Fhir.Since = "2026-01-01"

	patients, err := client.DiscoverPatients()

	assert.Nil(t, err)
	assert.Empty(t, patients)
}

func TestDiscoverPatientsApiKeyHeader(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Observation", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekret", r.Header.Get("X-API-Key"))
		json.NewEncoder(w).Encode(observationPage(nil, ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	client.Config.Fhir.ApiKey = "sekret"

	_, err := client.DiscoverPatients()

	assert.Nil(t, err)
}

func TestFetchPatientBundleAssemblesResources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Patient/P1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"resourceType": "Patient", "id": "P1"})
	})
	mux.HandleFunc("/Observation", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "P1", r.URL.Query().Get("patient"))
		json.NewEncoder(w).Encode(observationPage([]string{"Patient/P1", "Patient/P1"}, ""))
	})
	mux.HandleFunc("/DiagnosticReport", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"entry": []interface{}{
				map[string]interface{}{
					"resource": map[string]interface{}{"resourceType": "DiagnosticReport", "conclusion": "MDR-TB"},
				},
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)
	client.activeBase = server.URL

	bundle, err := client.FetchPatientBundle("P1")

	assert.Nil(t, err)
	assert.Equal(t, "Bundle", bundle["resourceType"])
	assert.Equal(t, "transaction", bundle["type"])
	// 1 patient + 2 observations + 1 diagnostic report
	assert.Len(t, bundle["entry"], 4)
}

func TestFetchCohortNoPatientsWritesEmptyBundle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Observation", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(observationPage(nil, ""))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outputDirectory := t.TempDir()
	client := newTestClient(server.URL)

	written, err := client.FetchCohort(outputDirectory)

	assert.Nil(t, err)
	assert.Empty(t, written)

	content, readErr := os.ReadFile(path.Join(outputDirectory, "fhir_no_data.json"))
	assert.Nil(t, readErr)

	var bundle map[string]interface{}
	assert.Nil(t, json.Unmarshal(content, &bundle))
	assert.Equal(t, "Bundle", bundle["resourceType"])
	assert.Len(t, bundle["entry"], 0)
}

func TestFetchCohortWritesBundlePerPatient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Observation", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("patient") != "" {
			json.NewEncoder(w).Encode(observationPage([]string{"Patient/P1"}, ""))
			return
		}
		json.NewEncoder(w).Encode(observationPage([]string{"Patient/P1"}, ""))
	})
	mux.HandleFunc("/Patient/P1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"resourceType": "Patient", "id": "P1"})
	})
	mux.HandleFunc("/DiagnosticReport", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"entry": []interface{}{}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outputDirectory := t.TempDir()
	client := newTestClient(server.URL)

	written, err := client.FetchCohort(outputDirectory)

	assert.Nil(t, err)
	assert.Equal(t, []string{path.Join(outputDirectory, "P1.fhir.json")}, written)

	_, statErr := os.Stat(written[0])
	assert.Nil(t, statErr)
}

func TestNextPageUrl(t *testing.T) {
	base := "http://fhir.example.org/fhir"

	assert.Equal(t, "", nextPageUrl(base, ""))

	assert.Equal(t,
		"http://fhir.example.org/Observation?page=2",
		nextPageUrl(base, "Observation?page=2"),
		"relative links resolve against the active base")

	assert.Equal(t,
		"http://fhir.example.org/fhir/Observation?page=3",
		nextPageUrl(base, "http://internal-proxy:8080/Observation?page=3"),
		"foreign-host links are rewritten onto the active base")

	sameHost := fmt.Sprintf("%s/Observation?page=4", "http://fhir.example.org")
	assert.Equal(t, sameHost, nextPageUrl(base, sameHost))
}
