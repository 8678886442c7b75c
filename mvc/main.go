package mvc

import (
	"strainmap/api/contexts"
	"strainmap/api/models"
	"strainmap/api/services/pipeline"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"
)

func RetrieveCommonElements(c echo.Context) (*elasticsearch.Client, *models.Config, *pipeline.PipelineService) {
	sc := c.(*contexts.StrainMapContext)
	return sc.Es7Client, sc.Config, sc.PipelineService
}
