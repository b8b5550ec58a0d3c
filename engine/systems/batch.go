package systems

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
	"github.com/spaghettifunk/extruder/engine/metadata"
)

// DefaultBatchSize is the number of features pushed per job.
const DefaultBatchSize int = 256

type batchParams struct {
	index int
	feats []*features.Feature
}

type batchResult struct {
	index int
	group *metadata.Group
}

// ExtrudeBatches splits feats into batches, pushes every batch through
// filter on the job system and joins the resulting groups under one root,
// in batch order. All batches share cx, so its diagnostics and metrics
// collect the whole run.
func ExtrudeBatches(js *JobSystem, filter *ExtrudeGeometryFilter, feats []*features.Feature, batchSize int, cx *FilterContext) (*metadata.Group, error) {
	if cx == nil {
		return nil, core.ErrNilFilterContext
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var batches [][]*features.Feature
	for start := 0; start < len(feats); start += batchSize {
		end := start + batchSize
		if end > len(feats) {
			end = len(feats)
		}
		batches = append(batches, feats[start:end])
	}

	groups := make([]*metadata.Group, len(batches))
	var errs []error
	var mutex sync.Mutex
	var wg sync.WaitGroup

	for i, batch := range batches {
		wg.Add(1)
		js.Submit(metadata.JobTask{
			JobType:     metadata.JOB_TYPE_EXTRUDE,
			Priority:    metadata.JOB_PRIORITY_NORMAL,
			InputParams: &batchParams{index: i, feats: batch},
			OnStart: func(params interface{}) (interface{}, error) {
				bp := params.(*batchParams)
				group, err := filter.Push(bp.feats, cx)
				if err != nil {
					return nil, err
				}
				return &batchResult{index: bp.index, group: group}, nil
			},
			OnComplete: func(result interface{}) {
				br := result.(*batchResult)
				mutex.Lock()
				groups[br.index] = br.group
				mutex.Unlock()
			},
			OnFailure: func(err error) {
				mutex.Lock()
				errs = append(errs, err)
				mutex.Unlock()
			},
			OnCompletionCallback: wg.Done,
		})
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	root := metadata.NewGroup()
	for _, g := range groups {
		if g != nil {
			root.AddGroup(g)
		}
	}
	return root, nil
}
