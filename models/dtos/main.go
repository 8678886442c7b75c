package dtos

import (
	"strainmap/api/models/runs"
	"strainmap/api/phylo"
)

type RunResponseDTO struct {
	Status  int                     `json:"status"`
	Message string                  `json:"message"`
	Run     *runs.PipelineRequest   `json:"run,omitempty"`
	Runs    []*runs.PipelineRequest `json:"runs,omitempty"`
}

type TreeResponseDTO struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Newick  string `json:"newick"`
}

type DistanceMatrixResponseDTO struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Matrix  *phylo.DistanceMatrix `json:"matrix"`
}

type MetadataResponseDTO struct {
	Status  int              `json:"status"`
	Message string           `json:"message"`
	Samples []phylo.Metadata `json:"samples"`
}

type ConsensusRecordDTO struct {
	SampleId string `json:"sampleId"`
	Sequence string `json:"sequence"`
}

type ConsensusResponseDTO struct {
	Status  int                  `json:"status"`
	Message string               `json:"message"`
	Records []ConsensusRecordDTO `json:"records"`
}
