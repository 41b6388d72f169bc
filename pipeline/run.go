package pipeline

import (
	"context"
	"iter"
	"sync"

	"github.com/gomlx/go-pubtator/pubtator"
	"github.com/gomlx/go-pubtator/records"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// run converts docs with convert, collecting the records in input order.
func run[R records.Record](ctx context.Context, docs iter.Seq2[*pubtator.Document, error], workers int,
	convert func(*pubtator.Document) (R, error), trace func(*pubtator.Document, R)) (*records.Collection[R], error) {
	var (
		collection *records.Collection[R]
		err        error
	)
	if workers < 2 {
		collection, err = runSequential(ctx, docs, convert, trace)
	} else {
		collection, err = runParallel(ctx, docs, workers, convert, trace)
	}
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("%d documents processed", collection.Len())
	return collection, nil
}

func runSequential[R records.Record](ctx context.Context, docs iter.Seq2[*pubtator.Document, error],
	convert func(*pubtator.Document) (R, error), trace func(*pubtator.Document, R)) (*records.Collection[R], error) {
	collection := records.NewCollection[R]()
	for doc, err := range docs {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "conversion interrupted")
		}
		record, err := convert(doc)
		if err != nil {
			return nil, err
		}
		collection.Append(record)
		if trace != nil {
			trace(doc, record)
		}
		logProgress(collection.Len())
	}
	return collection, nil
}

type outcome[R records.Record] struct {
	record R
	err    error
}

// job is a document being converted. Jobs are queued twice: once for the workers, once in input
// order for the collector of the results.
type job[R records.Record] struct {
	doc    *pubtator.Document
	result chan outcome[R]
}

func runParallel[R records.Record](ctx context.Context, docs iter.Seq2[*pubtator.Document, error], workers int,
	convert func(*pubtator.Document) (R, error), trace func(*pubtator.Document, R)) (*records.Collection[R], error) {
	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(chan job[R], 2*workers)
	jobs := make(chan job[R], workers)

	// Feeder: parses documents and queues them.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		defer close(pending)
		for doc, err := range docs {
			j := job[R]{doc: doc, result: make(chan outcome[R], 1)}
			if err != nil {
				j.result <- outcome[R]{err: err}
				select {
				case pending <- j:
				case <-ctx.Done():
				}
				return
			}
			select {
			case pending <- j:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				record, err := convert(j.doc)
				j.result <- outcome[R]{record: record, err: err}
			}
		}()
	}

	collection := records.NewCollection[R]()
	for j := range pending {
		var result outcome[R]
		select {
		case result = <-j.result:
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "conversion interrupted")
		}
		if result.err != nil {
			return nil, result.err
		}
		collection.Append(result.record)
		if trace != nil {
			trace(j.doc, result.record)
		}
		logProgress(collection.Len())
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "conversion interrupted")
	}
	return collection, nil
}
