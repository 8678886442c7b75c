package contexts

import (
	"strainmap/api/models"
	"strainmap/api/services/pipeline"
	"strainmap/api/services/scheduler"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

type (
	// "Helper" Context to pass into routes that need
	//  an elasticsearch client and other variables
	StrainMapContext struct {
		echo.Context
		Es7Client        *es7.Client
		Config           *models.Config
		PipelineService  *pipeline.PipelineService
		SchedulerService *scheduler.SchedulerService

		// populated by middleware
		SampleIds []string
	}
)
