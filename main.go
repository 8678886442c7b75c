package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"strainmap/api/contexts"
	sam "strainmap/api/middleware"
	"strainmap/api/models"
	serviceInfoConst "strainmap/api/models/constants/service-info"
	serviceInfoMvc "strainmap/api/mvc/service-info"

	phylogenyMvc "strainmap/api/mvc/phylogeny"
	samplesMvc "strainmap/api/mvc/samples"
	esRepo "strainmap/api/repositories/elasticsearch"
	"strainmap/api/services/pipeline"
	"strainmap/api/services/scheduler"
	"strainmap/api/utils"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tReference Path : %s \n"+
		"\tReference Label : %s \n"+
		"\tInput Directory : %s \n"+
		"\tAnchor Directory : %s \n"+
		"\tOutput Directory : %s \n\n"+

		"\tFHIR Url : %s \n"+
		"\tFHIR Page Size : %d \n\n"+

		"\tScheduler Enabled : %t \n"+
		"\tScheduler At : %s \n\n"+

		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Phylo.ReferencePath,
		cfg.Phylo.ReferenceLabel,
		cfg.Phylo.InputDirectory,
		cfg.Phylo.AnchorDirectory,
		cfg.Phylo.OutputDirectory,
		cfg.Fhir.Url,
		cfg.Fhir.PageSize,
		cfg.Scheduler.Enabled,
		cfg.Scheduler.At,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Api.Port)
	// --

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch (optional: the pipeline runs fine without it,
	//    the indexed-variants surface just goes dark)
	var es = utils.CreateEsConnection(&cfg)
	if es != nil {
		if indexErr := esRepo.SetupVariantsIndex(es); indexErr != nil {
			fmt.Printf("[%s] - Error setting up variants index : %v\n", time.Now(), indexErr)
		}
	}

	// Service Singletons
	ps := pipeline.NewPipelineService(es, &cfg)
	ss := scheduler.NewSchedulerService(&cfg, ps)

	// Configure Server
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
	}))

	// -- Override handlers with "custom StrainMap" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &contexts.StrainMapContext{
				Context:          c,
				Es7Client:        es,
				Config:           &cfg,
				PipelineService:  ps,
				SchedulerService: ss,
			}
			return h(cc)
		}
	})

	// Begin MVC Routes
	// -- Root
	e.GET("/", func(c echo.Context) error {
		fmt.Printf("[%s] - Root hit!\n", time.Now())
		return c.JSON(http.StatusOK, serviceInfoConst.SERVICE_WELCOME)
	})

	// -- Service Info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)

	// -- Phylogeny
	e.GET("/phylogeny/run", phylogenyMvc.PhylogenyRun)
	e.GET("/phylogeny/refresh", phylogenyMvc.PhylogenyRefreshAndRun)
	e.GET("/phylogeny/runs", phylogenyMvc.GetAllPhylogenyRuns)
	e.GET("/phylogeny/runs/:id", phylogenyMvc.GetPhylogenyRunById)

	e.GET("/phylogeny/tree", phylogenyMvc.GetTree)
	e.GET("/phylogeny/distance-matrix", phylogenyMvc.GetDistanceMatrix)
	e.GET("/phylogeny/metadata", phylogenyMvc.GetMetadata)
	e.GET("/phylogeny/consensus", phylogenyMvc.GetConsensus,
		// middleware
		sam.CalibrateOptionalSampleIdsPluralAttribute)

	// -- Samples
	e.GET("/samples/overview", samplesMvc.GetSamplesOverview)
	e.GET("/samples/variants", samplesMvc.GetVariantsBySampleId,
		// middleware
		sam.CalibrateOptionalSampleIdsPluralAttribute)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
