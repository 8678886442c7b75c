package phylogeny

import (
	"fmt"
	"net/http"
	"time"

	"strainmap/api/contexts"
	"strainmap/api/models/dtos"
	"strainmap/api/models/dtos/errors"
	"strainmap/api/models/runs"
	"strainmap/api/mvc"
	"strainmap/api/phylo"
	"strainmap/api/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo"
)

/*
	Handlers for the phylogenetics surface: triggering and tracking
	pipeline runs, and serving the artifacts of the latest run (tree,
	distance matrix, metadata, consensus genomes).
*/

func PhylogenyRun(c echo.Context) error {
	_, cfg, ps := mvc.RetrieveCommonElements(c)

	source := cfg.Phylo.InputDirectory
	if ps.SourceAlreadyRunning(source) {
		return c.JSON(http.StatusBadRequest, errors.CreateSimpleBadRequest(
			fmt.Sprintf("a pipeline run over %s is already in progress", source)))
	}

	request := &runs.PipelineRequest{
		Id:        uuid.New(),
		Source:    source,
		State:     runs.Queued,
		CreatedAt: time.Now().String(),
	}
	ps.RunRequestChan <- request

	go func() {
		if _, runErr := ps.Run(request); runErr != nil {
			fmt.Printf("[%s] - Pipeline run %s failed : %v\n", time.Now(), request.Id, runErr)
		}
	}()

	return c.JSON(http.StatusOK, dtos.RunResponseDTO{
		Status:  http.StatusOK,
		Message: "Pipeline run queued",
		Run:     request,
	})
}

// PhylogenyRefreshAndRun pulls fresh bundles from the configured FHIR
// server before running the pipeline. The refresh is synchronous on
// purpose: a client triggering it wants to know the fetch succeeded.
func PhylogenyRefreshAndRun(c echo.Context) error {
	sc := c.(*contexts.StrainMapContext)

	if sc.Config.Fhir.Url == "" {
		return c.JSON(http.StatusServiceUnavailable,
			errors.CreateSimpleServiceUnavailable("no FHIR server is configured"))
	}

	result, err := sc.SchedulerService.RefreshAndRun("api")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errors.CreateSimpleInternalServerError(err.Error()))
	}

	return c.JSON(http.StatusOK, dtos.TreeResponseDTO{
		Status:  http.StatusOK,
		Message: fmt.Sprintf("Pipeline run complete over %d samples", len(result.Samples)),
		Newick:  result.NewickTree,
	})
}

func GetAllPhylogenyRuns(c echo.Context) error {
	_, _, ps := mvc.RetrieveCommonElements(c)

	ps.RunRequestMapMux.RLock()
	defer ps.RunRequestMapMux.RUnlock()

	requests := make([]*runs.PipelineRequest, 0, len(ps.RunRequestMap))
	for _, request := range ps.RunRequestMap {
		requests = append(requests, request)
	}

	return c.JSON(http.StatusOK, dtos.RunResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Runs:    requests,
	})
}

func GetPhylogenyRunById(c echo.Context) error {
	_, _, ps := mvc.RetrieveCommonElements(c)

	runId := c.Param("id")

	ps.RunRequestMapMux.RLock()
	request, found := ps.RunRequestMap[runId]
	ps.RunRequestMapMux.RUnlock()

	if !found {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound(
			fmt.Sprintf("no pipeline run with id %s", runId)))
	}

	return c.JSON(http.StatusOK, dtos.RunResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Run:     request,
	})
}

func GetTree(c echo.Context) error {
	_, _, ps := mvc.RetrieveCommonElements(c)

	result := ps.LatestResult()
	if result == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("no pipeline run has completed yet"))
	}

	return c.JSON(http.StatusOK, dtos.TreeResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Newick:  result.NewickTree,
	})
}

func GetDistanceMatrix(c echo.Context) error {
	_, _, ps := mvc.RetrieveCommonElements(c)

	result := ps.LatestResult()
	if result == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("no pipeline run has completed yet"))
	}

	return c.JSON(http.StatusOK, dtos.DistanceMatrixResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Matrix:  result.Distances,
	})
}

func GetMetadata(c echo.Context) error {
	_, _, ps := mvc.RetrieveCommonElements(c)

	result := ps.LatestResult()
	if result == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("no pipeline run has completed yet"))
	}

	metadata := make([]phylo.Metadata, 0, len(result.Samples))
	for _, sample := range result.Samples {
		metadata = append(metadata, sample.Metadata)
	}

	return c.JSON(http.StatusOK, dtos.MetadataResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Samples: metadata,
	})
}

func GetConsensus(c echo.Context) error {
	sc := c.(*contexts.StrainMapContext)
	_, _, ps := mvc.RetrieveCommonElements(c)

	result := ps.LatestResult()
	if result == nil {
		return c.JSON(http.StatusNotFound, errors.CreateSimpleNotFound("no pipeline run has completed yet"))
	}

	wildcard := utils.StringInSlice("*", sc.SampleIds)

	records := []dtos.ConsensusRecordDTO{}
	for _, record := range result.Consensus {
		if wildcard || utils.StringInSlice(record.SampleId, sc.SampleIds) {
			records = append(records, dtos.ConsensusRecordDTO{
				SampleId: record.SampleId,
				Sequence: record.Sequence,
			})
		}
	}

	return c.JSON(http.StatusOK, dtos.ConsensusResponseDTO{
		Status:  http.StatusOK,
		Message: "Success",
		Records: records,
	})
}
