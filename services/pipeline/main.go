package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"strainmap/api/models"
	"strainmap/api/models/constants"
	"strainmap/api/models/constants/roles"
	"strainmap/api/models/indexes"
	"strainmap/api/models/runs"
	"strainmap/api/phylo"
	esRepo "strainmap/api/repositories/elasticsearch"
	"strainmap/api/sequences"
	"strainmap/api/services/extraction"
	"strainmap/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"golang.org/x/sync/errgroup"
)

/*
	PipelineService orchestrates one full run: reference load ->
	extraction -> alignment -> distances -> neighbor joining ->
	consensus -> output files, with optional bulk indexing of the
	extracted variant documents to Elasticsearch.
*/

type (
	PipelineService struct {
		Initialized         bool
		RunRequestChan      chan *runs.PipelineRequest
		RunRequestMap       map[string]*runs.PipelineRequest
		RunRequestMapMux    sync.RWMutex
		IndexingQueue       chan *QueuedVariantDocument
		BulkIndexer         esutil.BulkIndexer
		ElasticsearchClient *es7.Client
		Config              *models.Config

		latestResult    *Result
		latestResultMux sync.RWMutex
	}

	QueuedVariantDocument struct {
		Document  *indexes.VariantDocument
		WaitGroup *sync.WaitGroup
	}

	ConsensusRecord struct {
		SampleId string
		Sequence string
	}

	Result struct {
		ReferenceId     string
		ReferenceLength int
		Samples         []phylo.Sample
		Roles           map[string]constants.MetadataRole
		Alignment       *phylo.Alignment
		Distances       *phylo.DistanceMatrix
		Tree            *phylo.Node
		NewickTree      string
		Consensus       []ConsensusRecord
		GeneratedAt     time.Time
	}
)

func NewPipelineService(es *es7.Client, cfg *models.Config) *PipelineService {
	p := &PipelineService{
		Initialized:         false,
		RunRequestChan:      make(chan *runs.PipelineRequest),
		RunRequestMap:       map[string]*runs.PipelineRequest{},
		RunRequestMapMux:    sync.RWMutex{},
		IndexingQueue:       make(chan *QueuedVariantDocument, 100),
		ElasticsearchClient: es,
		Config:              cfg,
	}

	if es != nil {
		bi, _ := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
			Index:      esRepo.VariantsIndex,
			Client:     es,
			NumWorkers: 2,
		})
		p.BulkIndexer = bi
	}

	p.Init()

	return p
}

func (p *PipelineService) Init() {
	// safeguard to prevent multiple initilizations
	if p.Initialized {
		return
	}

	// spin up a go routine acting as a listener for run request
	// updates and variant-document bulk indexing
	go func() {
		for {
			select {
			case runRequest := <-p.RunRequestChan:
				if runRequest.State == runs.Queued {
					fmt.Printf("[%s] - Queueing a new pipeline run for %s\n", time.Now(), runRequest.Source)
				}

				runRequest.UpdatedAt = time.Now().String()
				p.RunRequestMapMux.Lock()
				p.RunRequestMap[runRequest.Id.String()] = runRequest
				p.RunRequestMapMux.Unlock()

			case queuedDocument := <-p.IndexingQueue:
				document := queuedDocument.Document
				wg := queuedDocument.WaitGroup

				documentData, marshallErr := json.Marshal(document)
				if marshallErr != nil {
					log.Fatalf("Cannot encode variant document %s:%d : %s\n", document.SampleId, document.Pos, marshallErr)
				}

				marshallErr = p.BulkIndexer.Add(
					context.Background(),
					esutil.BulkIndexerItem{
						Action: "index",
						Body:   bytes.NewReader(documentData),

						OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
							defer wg.Done()
						},
						OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
							defer wg.Done()
							if err != nil {
								fmt.Printf("ERROR: %s\n", err)
							} else {
								fmt.Printf("ERROR: %s: %s\n", res.Error.Type, res.Error.Reason)
							}
						},
					},
				)
				if marshallErr != nil {
					fmt.Printf("Unexpected error: %s\n", marshallErr)
					wg.Done()
				}
			}
		}
	}()

	p.Initialized = true
}

// Run executes a directory-driven pipeline run, tracking state on
// the given request: input and anchor bundles are discovered from
// the configured directories in sorted order.
func (p *PipelineService) Run(request *runs.PipelineRequest) (*Result, error) {
	request.State = runs.Running
	p.RunRequestChan <- request

	inputs, inputsErr := listBundleFiles(p.Config.Phylo.InputDirectory)
	if inputsErr != nil {
		request.State = runs.Error
		request.Message = inputsErr.Error()
		p.RunRequestChan <- request
		return nil, inputsErr
	}

	var anchors []string
	if p.Config.Phylo.AnchorDirectory != "" {
		var anchorsErr error
		anchors, anchorsErr = listBundleFiles(p.Config.Phylo.AnchorDirectory)
		if anchorsErr != nil {
			request.State = runs.Error
			request.Message = anchorsErr.Error()
			p.RunRequestChan <- request
			return nil, anchorsErr
		}
	}

	result, runErr := p.RunFiles(request, inputs, anchors)
	if runErr != nil {
		request.State = runs.Error
		request.Message = runErr.Error()
		p.RunRequestChan <- request
		return nil, runErr
	}

	request.State = runs.Done
	request.SampleCount = len(result.Samples)
	p.RunRequestChan <- request

	return result, nil
}

// RunFiles executes the pipeline over explicit bundle file lists.
// The cohort order is fixed: synthetic reference sample, anchors,
// then inputs, so repeated runs emit identical matrices and trees.
func (p *PipelineService) RunFiles(request *runs.PipelineRequest, inputs []string, anchors []string) (*Result, error) {
	startTime := time.Now()

	reference, referenceId, refErr := sequences.LoadReference(p.Config.Phylo.ReferencePath)
	if refErr != nil {
		return nil, fmt.Errorf("loading reference: %w", refErr)
	}

	result := &Result{
		ReferenceId:     referenceId,
		ReferenceLength: len(reference),
		Roles:           map[string]constants.MetadataRole{},
	}

	// synthetic reference sample: a row of pure reference calls
	referenceLabel := p.Config.Phylo.ReferenceLabel
	referenceSample := phylo.Sample{
		Id:       referenceLabel,
		Variants: map[int]string{},
		Metadata: phylo.Metadata{
			SampleId:   referenceLabel,
			PatientId:  string(roles.Reference),
			Latitude:   phylo.NotAvailable,
			Longitude:  phylo.NotAvailable,
			Conclusion: "Reference Genome",
		},
	}
	result.Samples = append(result.Samples, referenceSample)
	result.Roles[referenceLabel] = roles.Reference

	for _, anchorPath := range anchors {
		sample, err := parseBundleFile(anchorPath)
		if err != nil {
			return nil, err
		}
		overrideAnchorMetadata(&sample.Metadata)
		result.Samples = append(result.Samples, sample)
		result.Roles[sample.Id] = roles.Anchor
	}

	for _, inputPath := range inputs {
		sample, err := parseBundleFile(inputPath)
		if err != nil {
			return nil, err
		}
		result.Samples = append(result.Samples, sample)
		result.Roles[sample.Id] = roles.Subject
	}

	fmt.Printf("[%s] - Running phylogenetics over %d samples (reference %s, %d bases)\n",
		time.Now(), len(result.Samples), referenceId, len(reference))

	result.Alignment = phylo.BuildAlignment(reference, result.Samples)
	result.Distances = phylo.ComputeDistances(result.Alignment)

	if result.Alignment.Width() > 0 {
		tree, treeErr := phylo.BuildNJTree(result.Distances)
		if treeErr != nil {
			return nil, treeErr
		}
		result.Tree = tree
	}
	result.NewickTree = phylo.Newick(result.Tree)

	// consensus projection is independent per sample
	result.Consensus = make([]ConsensusRecord, len(result.Samples))
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := range result.Samples {
		i := i
		g.Go(func() error {
			result.Consensus[i] = ConsensusRecord{
				SampleId: result.Samples[i].Id,
				Sequence: phylo.Consensus(reference, result.Samples[i]),
			}
			return nil
		})
	}
	g.Wait()

	result.GeneratedAt = time.Now()

	if err := p.writeOutputs(result); err != nil {
		return nil, err
	}

	if p.ElasticsearchClient != nil && p.BulkIndexer != nil {
		p.indexVariantDocuments(request, result, reference)
	}

	p.latestResultMux.Lock()
	p.latestResult = result
	p.latestResultMux.Unlock()

	fmt.Printf("[%s] - Pipeline run complete in %s (%d variant positions)\n",
		time.Now(), time.Since(startTime), result.Alignment.Width())

	return result, nil
}

func (p *PipelineService) writeOutputs(result *Result) error {
	outputDirectory := p.Config.Phylo.OutputDirectory

	metadata := make([]phylo.Metadata, 0, len(result.Samples))
	for _, sample := range result.Samples {
		metadata = append(metadata, sample.Metadata)
	}
	if err := utils.WriteMetadataTsv(path.Join(outputDirectory, "metadata.tsv"), metadata); err != nil {
		return err
	}

	if err := utils.WriteDistanceMatrixTsv(path.Join(outputDirectory, "distance_matrix.tsv"), result.Distances); err != nil {
		return err
	}

	if err := utils.WriteNewickFile(path.Join(outputDirectory, "phylo_tree.nwk"), result.Tree); err != nil {
		return err
	}

	names := make([]string, len(result.Consensus))
	seqs := make([]string, len(result.Consensus))
	for i, record := range result.Consensus {
		names[i] = record.SampleId
		seqs[i] = record.Sequence
	}
	return utils.WriteFasta(path.Join(outputDirectory, "consensus.fasta"), names, seqs)
}

func (p *PipelineService) indexVariantDocuments(request *runs.PipelineRequest, result *Result, reference string) {
	var wg sync.WaitGroup

	for _, sample := range result.Samples {
		positions := make([]int, 0, len(sample.Variants))
		for pos := range sample.Variants {
			positions = append(positions, pos)
		}
		sort.Ints(positions)

		for _, pos := range positions {
			allele := sample.Variants[pos]
			if allele == "" {
				continue
			}

			refBase := ""
			if pos >= 1 && pos <= len(reference) {
				refBase = string(reference[pos-1])
			}

			wg.Add(1)
			p.IndexingQueue <- &QueuedVariantDocument{
				Document: &indexes.VariantDocument{
					SampleId:    sample.Id,
					PatientId:   sample.Metadata.PatientId,
					Pos:         pos,
					Ref:         refBase,
					Alt:         string(allele[0]),
					Latitude:    sample.Metadata.Latitude,
					Longitude:   sample.Metadata.Longitude,
					Conclusion:  sample.Metadata.Conclusion,
					Role:        string(result.Roles[sample.Id]),
					RunId:       request.Id.String(),
					CreatedTime: time.Now(),
				},
				WaitGroup: &wg,
			}
		}
	}

	wg.Wait()
}

// SourceAlreadyRunning reports whether a run over the same source is
// already queued or running.
func (p *PipelineService) SourceAlreadyRunning(source string) bool {
	p.RunRequestMapMux.Lock()
	defer p.RunRequestMapMux.Unlock()

	for _, request := range p.RunRequestMap {
		if request.Source == source && (request.State == runs.Queued || request.State == runs.Running) {
			return true
		}
	}
	return false
}

func (p *PipelineService) LatestResult() *Result {
	p.latestResultMux.RLock()
	defer p.latestResultMux.RUnlock()

	return p.latestResult
}

func parseBundleFile(bundlePath string) (phylo.Sample, error) {
	raw, readErr := os.ReadFile(bundlePath)
	if readErr != nil {
		return phylo.Sample{}, readErr
	}
	return extraction.ParseBundle(raw, bundlePath)
}

func overrideAnchorMetadata(metadata *phylo.Metadata) {
	metadata.PatientId = string(roles.Reference)
	if metadata.Conclusion == phylo.NotAvailable {
		metadata.Conclusion = string(roles.Anchor)
	} else {
		metadata.Conclusion = fmt.Sprintf("%s (%s)", metadata.Conclusion, roles.Anchor)
	}
}

func listBundleFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, path.Join(directory, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
