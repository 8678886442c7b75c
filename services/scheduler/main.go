package scheduler

import (
	"fmt"
	"time"

	"strainmap/api/models"
	"strainmap/api/models/runs"
	"strainmap/api/services/acquisition"
	"strainmap/api/services/pipeline"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

type (
	SchedulerService struct {
		Initialized     bool
		Config          *models.Config
		PipelineService *pipeline.PipelineService
	}
)

func NewSchedulerService(cfg *models.Config, ps *pipeline.PipelineService) *SchedulerService {
	ss := &SchedulerService{
		Initialized:     false,
		Config:          cfg,
		PipelineService: ps,
	}

	ss.Init()

	return ss
}

func (ss *SchedulerService) Init() {
	if ss.Initialized {
		return
	}

	if ss.Config.Scheduler.Enabled {
		// - spin up a go routine that refreshes the cohort from the
		//   FHIR server and rebuilds the phylogeny once a day, off
		//   peak hours
		go func() {
			s := gocron.NewScheduler(time.UTC)

			s.Every(1).Days().At(ss.Config.Scheduler.At).Do(func() {
				fmt.Printf("[%s] - Running scheduled cohort refresh..\n", time.Now())
				ss.RefreshAndRun("scheduler")
			})

			s.StartBlocking()
		}()
	}

	ss.Initialized = true
}

// RefreshAndRun pulls fresh bundles from the FHIR server into the
// input directory (when one is configured) and then executes a full
// pipeline run. Overlapping runs from the same source are skipped.
func (ss *SchedulerService) RefreshAndRun(source string) (*pipeline.Result, error) {
	if ss.PipelineService.SourceAlreadyRunning(source) {
		return nil, fmt.Errorf("a run from source %s is already in progress", source)
	}

	if ss.Config.Fhir.Url != "" {
		client := acquisition.NewClient(ss.Config)
		if _, fetchErr := client.FetchCohort(ss.Config.Phylo.InputDirectory); fetchErr != nil {
			fmt.Printf("[%s] - Error refreshing cohort : %v\n", time.Now(), fetchErr)
			return nil, fetchErr
		}
	}

	request := &runs.PipelineRequest{
		Id:        uuid.New(),
		Source:    source,
		State:     runs.Queued,
		CreatedAt: time.Now().String(),
	}
	ss.PipelineService.RunRequestChan <- request

	return ss.PipelineService.Run(request)
}
