package main

import (
	"fmt"
	"os"
	"time"

	"strainmap/api/models"
	"strainmap/api/models/runs"
	"strainmap/api/services/acquisition"
	"strainmap/api/services/pipeline"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

/*
	Command line companion to the API server: runs the acquisition and
	phylogenetics stages as one-shot commands, for air-gapped or batch
	use where a long-lived service is overkill.
*/

var (
	configPath string

	cfg models.Config
)

var rootCmd = &cobra.Command{
	Use:   "strainmap",
	Short: "Outbreak phylogenetics from clinical variant records",
	Long: `StrainMap converts clinical genomic variant record bundles into
SNP distance matrices, neighbor-joining trees and consensus genomes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a yaml config file is authoritative when given; otherwise
		// configuration comes from the environment like the server
		if configPath != "" {
			f, openErr := os.Open(configPath)
			if openErr != nil {
				return openErr
			}
			defer f.Close()
			if decodeErr := yaml.NewDecoder(f).Decode(&cfg); decodeErr != nil {
				return fmt.Errorf("decoding %s: %w", configPath, decodeErr)
			}
			if cfg.Phylo.ReferenceLabel == "" {
				cfg.Phylo.ReferenceLabel = "H37Rv"
			}
			if cfg.Phylo.OutputDirectory == "" {
				cfg.Phylo.OutputDirectory = "."
			}
			if cfg.Fhir.PageSize == 0 {
				cfg.Fhir.PageSize = 1000
			}
			return nil
		}
		return envconfig.Process("", &cfg)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Pull per-patient record bundles from the configured FHIR server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Fhir.Url == "" {
			return fmt.Errorf("no FHIR server configured (STRAINMAP_FHIR_URL)")
		}
		if cfg.Phylo.InputDirectory == "" {
			return fmt.Errorf("no input directory configured (STRAINMAP_INPUT_DIR)")
		}

		client := acquisition.NewClient(&cfg)
		written, fetchErr := client.FetchCohort(cfg.Phylo.InputDirectory)
		if fetchErr != nil {
			return fetchErr
		}

		fmt.Printf("[%s] - Wrote %d bundles to %s\n", time.Now(), len(written), cfg.Phylo.InputDirectory)
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the distance matrix, tree and consensus genomes from local bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Phylo.ReferencePath == "" {
			return fmt.Errorf("no reference genome configured (STRAINMAP_REFERENCE_PATH)")
		}
		if cfg.Phylo.InputDirectory == "" {
			return fmt.Errorf("no input directory configured (STRAINMAP_INPUT_DIR)")
		}

		ps := pipeline.NewPipelineService(nil, &cfg)
		request := &runs.PipelineRequest{
			Id:        uuid.New(),
			Source:    cfg.Phylo.InputDirectory,
			State:     runs.Queued,
			CreatedAt: time.Now().String(),
		}

		result, runErr := ps.Run(request)
		if runErr != nil {
			return runErr
		}

		fmt.Printf("[%s] - Built phylogeny for %d samples (%d variant positions) in %s\n",
			time.Now(), len(result.Samples), result.Alignment.Width(), cfg.Phylo.OutputDirectory)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a yaml config file")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(buildCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
