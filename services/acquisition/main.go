package acquisition

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"strainmap/api/models"
	"strainmap/api/models/constants/fhir"
	"strainmap/api/utils"

	"github.com/Jeffail/gabs"
	"github.com/cenkalti/backoff"
)

/*
	Record Acquisition Service: pulls per-patient FHIR record bundles
	from a remote server. Handles OAuth2 client-credentials / API-key
	auth, result pagination via the bundle's `next` link, and servers
	that mount their FHIR endpoint under a /fhir prefix (detected by
	a 404 on the bare path and switched to exactly once).
*/

type Client struct {
	Config     *models.Config
	HttpClient *http.Client

	// retry policy for transient transport errors and 5xx responses
	RetryMaxAttempts     uint64
	RetryInitialInterval time.Duration

	bearerToken string
	activeBase  string
}

func NewClient(cfg *models.Config) *Client {
	return &Client{
		Config:               cfg,
		HttpClient:           &http.Client{Timeout: 60 * time.Second},
		RetryMaxAttempts:     5,
		RetryInitialInterval: backoff.DefaultInitialInterval,
	}
}

// FetchCohort discovers every patient carrying genetic variant data
// and writes one transaction bundle per patient into outputDirectory
// as <patient>.fhir.json, returning the written paths. When no
// patients are found an empty bundle is written to fhir_no_data.json
// instead so downstream tooling can tell "ran, found nothing" from
// "never ran".
func (c *Client) FetchCohort(outputDirectory string) ([]string, error) {
	patients, err := c.DiscoverPatients()
	if err != nil {
		return nil, err
	}
	fmt.Printf("[%s] - Found %d patients with variant data\n", time.Now(), len(patients))

	if len(patients) == 0 {
		emptyBundle := map[string]interface{}{
			"resourceType": string(fhir.ResourceTypeBundle),
			"type":         "transaction",
			"entry":        []interface{}{},
		}
		emptyPath := path.Join(outputDirectory, "fhir_no_data.json")
		if writeErr := writeJson(emptyPath, emptyBundle); writeErr != nil {
			return nil, writeErr
		}
		fmt.Printf("[%s] - No patients found; wrote %s\n", time.Now(), emptyPath)
		return nil, nil
	}

	var written []string
	for _, patientId := range patients {
		fmt.Printf("[%s] - Fetching full bundle for Patient %s\n", time.Now(), patientId)

		bundle, bundleErr := c.FetchPatientBundle(patientId)
		if bundleErr != nil {
			fmt.Printf("[%s] - Error fetching bundle for Patient %s : %v\n", time.Now(), patientId, bundleErr)
			continue
		}

		bundlePath := path.Join(outputDirectory, fmt.Sprintf("%s.fhir.json", patientId))
		if writeErr := writeJson(bundlePath, bundle); writeErr != nil {
			return written, writeErr
		}
		written = append(written, bundlePath)
	}

	return written, nil
}

// DiscoverPatients searches Observations coded as genetic variant
// assessments and collects the unique set of referenced patient ids
// in first-seen order.
func (c *Client) DiscoverPatients() ([]string, error) {
	c.authenticate()

	initialBase := strings.TrimRight(c.Config.Fhir.Url, "/")
	fallbackBase := initialBase + "/fhir"
	c.activeBase = initialBase

	fmt.Printf("[%s] - Connecting to FHIR server %s\n", time.Now(), c.activeBase)

	seen := map[string]bool{}
	patients := []string{}

	searchUrl := c.observationSearchUrl()
	for searchUrl != "" {
		body, status, err := c.get(searchUrl)
		if err != nil {
			return patients, err
		}

		if status == http.StatusNotFound && c.activeBase == initialBase {
			fmt.Printf("[%s] - Received 404 for /Observation; retrying with /fhir prefix\n", time.Now())
			c.activeBase = fallbackBase
			searchUrl = c.observationSearchUrl()
			continue
		}
		if status != http.StatusOK {
			return patients, fmt.Errorf("observation search returned status %d", status)
		}

		parsed, parseErr := gabs.ParseJSON(body)
		if parseErr != nil {
			return patients, fmt.Errorf("parsing observation search page: %w", parseErr)
		}

		for _, entry := range utils.JsonChildren(parsed, "entry") {
			subject := utils.JsonString(entry, "resource", "subject", "reference")
			if strings.HasPrefix(subject, "Patient/") {
				segments := strings.Split(subject, "/")
				patientId := segments[len(segments)-1]
				if !seen[patientId] {
					seen[patientId] = true
					patients = append(patients, patientId)
				}
			}
		}

		searchUrl = nextPageUrl(c.activeBase, nextLink(parsed))
	}

	return patients, nil
}

// FetchPatientBundle assembles one transaction bundle holding the
// Patient resource, all of its Observations (paginated) and its
// DiagnosticReports.
func (c *Client) FetchPatientBundle(patientId string) (map[string]interface{}, error) {
	var resources []interface{}

	if body, status, err := c.get(fmt.Sprintf("%s/Patient/%s", c.activeBase, patientId)); err == nil && status == http.StatusOK {
		var patient map[string]interface{}
		if jsonErr := json.Unmarshal(body, &patient); jsonErr == nil {
			resources = append(resources, patient)
		}
	} else if err != nil {
		fmt.Printf("[%s] - Error fetching Patient/%s : %v\n", time.Now(), patientId, err)
	}

	observationUrl := fmt.Sprintf("%s/Observation?patient=%s&_count=%d", c.activeBase, patientId, c.Config.Fhir.PageSize)
	for observationUrl != "" {
		body, status, err := c.get(observationUrl)
		if err != nil || status != http.StatusOK {
			fmt.Printf("[%s] - Failed to fetch observations for Patient %s (status %d)\n", time.Now(), patientId, status)
			break
		}

		parsed, parseErr := gabs.ParseJSON(body)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing observation page for patient %s: %w", patientId, parseErr)
		}

		entries := utils.JsonChildren(parsed, "entry")
		if len(entries) > 0 {
			fmt.Printf("[%s] - Downloaded %d observations for Patient %s\n", time.Now(), len(entries), patientId)
			for _, entry := range entries {
				if resource := entry.S("resource"); resource != nil {
					resources = append(resources, resource.Data())
				}
			}
		}

		observationUrl = nextPageUrl(c.activeBase, nextLink(parsed))
	}

	if body, status, err := c.get(fmt.Sprintf("%s/DiagnosticReport?patient=%s", c.activeBase, patientId)); err == nil && status == http.StatusOK {
		if parsed, parseErr := gabs.ParseJSON(body); parseErr == nil {
			for _, entry := range utils.JsonChildren(parsed, "entry") {
				if resource := entry.S("resource"); resource != nil {
					resources = append(resources, resource.Data())
				}
			}
		}
	} else if err != nil {
		fmt.Printf("[%s] - Error fetching reports for Patient %s : %v\n", time.Now(), patientId, err)
	}

	entry := make([]interface{}, 0, len(resources))
	for _, resource := range resources {
		entry = append(entry, map[string]interface{}{"resource": resource})
	}

	return map[string]interface{}{
		"resourceType": string(fhir.ResourceTypeBundle),
		"type":         "transaction",
		"entry":        entry,
	}, nil
}

func (c *Client) observationSearchUrl() string {
	searchUrl := fmt.Sprintf("%s/Observation?code=%s&_count=%d",
		c.activeBase, fhir.CodeGeneticVariantAssessment, c.Config.Fhir.PageSize)
	if c.Config.Fhir.Since != "" {
		searchUrl += "&_lastUpdated=gt" + c.Config.Fhir.Since
	}
	return searchUrl
}

// authenticate exchanges OAuth2 client credentials for a bearer
// token when a token endpoint is configured. Failure downgrades to
// unauthenticated (or API-key) requests rather than aborting.
func (c *Client) authenticate() {
	cfg := c.Config.Fhir
	if cfg.TokenUrl == "" || cfg.ClientId == "" || cfg.ClientSecret == "" {
		return
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cfg.ClientId)
	form.Set("client_secret", cfg.ClientSecret)
	if cfg.Scope != "" {
		form.Set("scope", cfg.Scope)
	}

	resp, err := c.HttpClient.PostForm(cfg.TokenUrl, form)
	if err != nil {
		fmt.Printf("[%s] - OAuth token exchange failed : %v\n", time.Now(), err)
		return
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil || resp.StatusCode != http.StatusOK {
		fmt.Printf("[%s] - OAuth token exchange returned status %d\n", time.Now(), resp.StatusCode)
		return
	}

	parsed, parseErr := gabs.ParseJSON(body)
	if parseErr != nil {
		return
	}
	c.bearerToken = utils.JsonString(parsed, "access_token")
}

// get performs one GET with FHIR headers, retrying transport errors
// and 5xx responses with capped exponential backoff. Non-5xx status
// codes (404 included) are returned to the caller undisturbed.
func (c *Client) get(requestUrl string) ([]byte, int, error) {
	var (
		body   []byte
		status int
	)

	operation := func() error {
		request, err := http.NewRequest("GET", requestUrl, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		request.Header.Set("Accept", "application/fhir+json")
		if c.bearerToken != "" {
			request.Header.Set("Authorization", "Bearer "+c.bearerToken)
		} else if c.Config.Fhir.ApiKey != "" {
			request.Header.Set("X-API-Key", c.Config.Fhir.ApiKey)
		}

		response, err := c.HttpClient.Do(request)
		if err != nil {
			return err
		}
		defer response.Body.Close()

		responseBody, readErr := io.ReadAll(response.Body)
		if readErr != nil {
			return readErr
		}
		if response.StatusCode >= 500 {
			return fmt.Errorf("got status %d from %s", response.StatusCode, requestUrl)
		}

		body = responseBody
		status = response.StatusCode
		return nil
	}

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = c.RetryInitialInterval
	if err := backoff.Retry(operation, backoff.WithMaxRetries(retryBackoff, c.RetryMaxAttempts)); err != nil {
		return nil, 0, err
	}
	return body, status, nil
}

func nextLink(parsed *gabs.Container) string {
	for _, link := range utils.JsonChildren(parsed, "link") {
		if utils.JsonString(link, "relation") == "next" {
			return utils.JsonString(link, "url")
		}
	}
	return ""
}

// nextPageUrl normalizes a pagination link against the active base:
// relative links are resolved, and absolute links pointing at a
// different host (a server advertising itself behind a proxy) are
// rewritten onto the active base keeping only the query.
func nextPageUrl(activeBase string, next string) string {
	if next == "" {
		return ""
	}

	if !strings.HasPrefix(next, "http") {
		base, baseErr := url.Parse(activeBase)
		ref, refErr := url.Parse(next)
		if baseErr != nil || refErr != nil {
			return ""
		}
		return base.ResolveReference(ref).String()
	}

	nextParsed, nextErr := url.Parse(next)
	baseParsed, baseErr := url.Parse(activeBase)
	if nextErr != nil || baseErr != nil {
		return ""
	}
	if nextParsed.Host != baseParsed.Host {
		return fmt.Sprintf("%s/Observation?%s", activeBase, nextParsed.RawQuery)
	}

	return next
}

func writeJson(filePath string, document interface{}) error {
	payload, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, payload, 0644)
}
