package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/model"
)

// BatchKind is the operation a batch item performs.
type BatchKind int

// Batch item kinds.
const (
	BatchQuery BatchKind = iota
	BatchInsert
	BatchUpdate
	BatchDelete
)

func (k BatchKind) String() string {
	switch k {
	case BatchQuery:
		return "query"
	case BatchInsert:
		return "insert"
	case BatchUpdate:
		return "update"
	case BatchDelete:
		return "delete"
	default:
		return fmt.Sprintf("BatchKind(%d)", int(k))
	}
}

func (k BatchKind) op() Op {
	switch k {
	case BatchInsert:
		return OpInsert
	case BatchUpdate:
		return OpUpdate
	case BatchDelete:
		return OpDelete
	default:
		return OpQuery
	}
}

// Batch errors.
var (
	// ErrDuplicateBatchID indicates a correlation id was added twice.
	ErrDuplicateBatchID = errors.New("duplicate batch correlation id")

	// ErrBatchAlreadyRun indicates Run was called on a finished batch.
	ErrBatchAlreadyRun = errors.New("batch operation already run")

	// ErrEmptyBatch indicates Run was called with no items.
	ErrEmptyBatch = errors.New("batch operation has no items")
)

// BatchResult is the outcome of one batch item.
type BatchResult struct {
	CorrelationID string
	Kind          BatchKind
	// Entry is the server's copy for successful queries, inserts and updates.
	Entry model.Entity
	// Err is the item's failure, if any.
	Err error
}

type batchItem struct {
	id      string
	kind    BatchKind
	uri     string
	entity  model.Entity
	factory model.EntryFactory
}

// newEntity returns an empty entity of the item's kind for its result.
func (it *batchItem) newEntity() model.Entity {
	if it.entity != nil {
		return model.NewLike(it.entity)
	}
	if it.factory != nil {
		return it.factory()
	}
	return model.NewEntry()
}

// BatchOperation collects operations sent together in one request. Items are
// correlated with their results by id, so the server may answer in any
// order. A batch runs once.
type BatchOperation struct {
	service *Service
	ad      *domain.AuthorizationDomain
	uri     string

	mu    sync.Mutex
	items []*batchItem
	ids   map[string]struct{}
	ran   bool
}

// NewBatchOperation starts a batch to be posted to batchURI.
func (s *Service) NewBatchOperation(ad *domain.AuthorizationDomain, batchURI string) *BatchOperation {
	return &BatchOperation{
		service: s,
		ad:      ad,
		uri:     batchURI,
		ids:     make(map[string]struct{}),
	}
}

// AddQuery adds a fetch of one entry. entryURI is the entry's id for XML
// services and its self link for JSON services. An empty correlationID is
// replaced by a generated one, which is returned.
func (b *BatchOperation) AddQuery(correlationID, entryURI string, factory model.EntryFactory) (string, error) {
	return b.add(&batchItem{id: correlationID, kind: BatchQuery, uri: entryURI, factory: factory})
}

// AddInsert adds an insertion. feedURI is where JSON services post the entry;
// XML services ignore it.
func (b *BatchOperation) AddInsert(correlationID, feedURI string, e model.Entity) (string, error) {
	if e.BaseEntry().IsInserted() {
		return "", &domain.ServiceError{Kind: domain.ErrEntryAlreadyInserted, Op: string(OpBatch), Message: e.BaseEntry().ID()}
	}
	return b.add(&batchItem{id: correlationID, kind: BatchInsert, uri: feedURI, entity: e})
}

// AddUpdate adds an update of an inserted entry.
func (b *BatchOperation) AddUpdate(correlationID string, e model.Entity) (string, error) {
	return b.add(&batchItem{id: correlationID, kind: BatchUpdate, uri: editURI(e, OpUpdate), entity: e})
}

// AddDelete adds a deletion of an inserted entry.
func (b *BatchOperation) AddDelete(correlationID string, e model.Entity) (string, error) {
	return b.add(&batchItem{id: correlationID, kind: BatchDelete, uri: editURI(e, OpDelete), entity: e})
}

func (b *BatchOperation) add(it *batchItem) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ran {
		return "", ErrBatchAlreadyRun
	}
	if it.id == "" {
		it.id = uuid.NewString()
	}
	if _, dup := b.ids[it.id]; dup {
		return "", fmt.Errorf("%w: %s", ErrDuplicateBatchID, it.id)
	}
	b.ids[it.id] = struct{}{}
	b.items = append(b.items, it)
	return it.id, nil
}

// Len returns the number of items added.
func (b *BatchOperation) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Run sends the batch and returns one result per item, in the order the
// items were added. Item failures are reported in their slot; the returned
// error is set only when the batch as a whole failed.
func (b *BatchOperation) Run(ctx context.Context) ([]BatchResult, error) {
	b.mu.Lock()
	if b.ran {
		b.mu.Unlock()
		return nil, ErrBatchAlreadyRun
	}
	if len(b.items) == 0 {
		b.mu.Unlock()
		return nil, ErrEmptyBatch
	}
	b.ran = true
	items := b.items
	b.mu.Unlock()

	var codec batchCodec = xmlBatchCodec{}
	if b.service.cfg.Format == FormatJSON {
		codec = jsonBatchCodec{}
	}

	body, contentType, err := codec.encode(items)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", contentType)

	resp, data, err := b.service.send(ctx, b.ad, OpBatch, http.MethodPost, b.uri, body, header)
	if err != nil {
		return nil, err
	}
	if !success(resp.StatusCode) {
		return nil, b.service.decodeError(OpBatch, resp, data)
	}

	outcomes, err := codec.decode(b.service, resp, data, items)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(items))
	for i, it := range items {
		res, ok := outcomes[it.id]
		if !ok {
			res = BatchResult{Err: domain.ProtocolError(string(OpBatch), "no result for batch item %s", it.id)}
		}
		res.CorrelationID = it.id
		res.Kind = it.kind
		results[i] = res
	}
	return results, nil
}

// RunAsync runs the batch in the background.
func (b *BatchOperation) RunAsync(ctx context.Context) *Operation[[]BatchResult] {
	return Go(ctx, b.Run)
}
