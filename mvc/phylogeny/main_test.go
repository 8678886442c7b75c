package phylogeny

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"
	"time"

	"strainmap/api/contexts"
	"strainmap/api/models"
	"strainmap/api/models/dtos"
	"strainmap/api/models/runs"
	"strainmap/api/services/pipeline"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T, ps *pipeline.PipelineService, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	sc := &contexts.StrainMapContext{
		Context:         e.NewContext(req, rec),
		Config:          ps.Config,
		PipelineService: ps,
	}
	return sc, rec
}

func newTestPipelineService(t *testing.T) *pipeline.PipelineService {
	baseDir := t.TempDir()

	referencePath := path.Join(baseDir, "reference.fasta")
	assert.Nil(t, os.WriteFile(referencePath, []byte(">ref\nACGT\n"), 0644))

	inputDirectory := path.Join(baseDir, "inputs")
	assert.Nil(t, os.Mkdir(inputDirectory, 0755))

	cfg := &models.Config{}
	cfg.Phylo.ReferencePath = referencePath
	cfg.Phylo.ReferenceLabel = "H37Rv"
	cfg.Phylo.InputDirectory = inputDirectory
	cfg.Phylo.OutputDirectory = baseDir

	return pipeline.NewPipelineService(nil, cfg)
}

func TestGetTreeBeforeAnyRun(t *testing.T) {
	ps := newTestPipelineService(t)
	c, rec := newTestContext(t, ps, "/phylogeny/tree")

	assert.Nil(t, GetTree(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTreeAfterRun(t *testing.T) {
	ps := newTestPipelineService(t)

	_, runErr := ps.Run(&runs.PipelineRequest{Id: uuid.New(), Source: "test", State: runs.Queued})
	assert.Nil(t, runErr)

	c, rec := newTestContext(t, ps, "/phylogeny/tree")
	assert.Nil(t, GetTree(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var dto dtos.TreeResponseDTO
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	// a cohort of just the reference has no variant columns
	assert.Equal(t, "();", dto.Newick)
}

func TestPhylogenyRunQueuesARun(t *testing.T) {
	ps := newTestPipelineService(t)
	c, rec := newTestContext(t, ps, "/phylogeny/run")

	assert.Nil(t, PhylogenyRun(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var dto dtos.RunResponseDTO
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.NotNil(t, dto.Run)

	// the run executes asynchronously; wait for it to land
	deadline := time.Now().Add(5 * time.Second)
	for ps.LatestResult() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.NotNil(t, ps.LatestResult())
}

func TestGetConsensusFiltersBySampleId(t *testing.T) {
	ps := newTestPipelineService(t)

	_, runErr := ps.Run(&runs.PipelineRequest{Id: uuid.New(), Source: "test", State: runs.Queued})
	assert.Nil(t, runErr)

	c, rec := newTestContext(t, ps, "/phylogeny/consensus")
	c.(*contexts.StrainMapContext).SampleIds = []string{"H37Rv"}

	assert.Nil(t, GetConsensus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var dto dtos.ConsensusResponseDTO
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Len(t, dto.Records, 1)
	assert.Equal(t, "H37Rv", dto.Records[0].SampleId)
	assert.Equal(t, "ACGT", dto.Records[0].Sequence)

	c2, rec2 := newTestContext(t, ps, "/phylogeny/consensus")
	c2.(*contexts.StrainMapContext).SampleIds = []string{"nope"}
	assert.Nil(t, GetConsensus(c2))

	var empty dtos.ConsensusResponseDTO
	assert.Nil(t, json.Unmarshal(rec2.Body.Bytes(), &empty))
	assert.Len(t, empty.Records, 0)
}
