package services

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
	"github.com/custodia-labs/gdata/internal/logger"
)

// batchCodec encodes a batch request and matches the response to its items.
type batchCodec interface {
	encode(items []*batchItem) (body []byte, contentType string, err error)
	decode(s *Service, resp *http.Response, body []byte, items []*batchItem) (map[string]BatchResult, error)
}

func indexItems(items []*batchItem) map[string]*batchItem {
	byID := make(map[string]*batchItem, len(items))
	for _, it := range items {
		byID[it.id] = it
	}
	return byID
}

func logBatchResult(it *batchItem, status int) {
	logger.L().Debug("batch item",
		zap.String("id", it.id),
		zap.Stringer("kind", it.kind),
		zap.Int("status", status))
}

// xmlBatchCodec speaks the Atom batch protocol: a feed of entries each
// tagged with batch:id and batch:operation, answered by a feed whose
// entries carry batch:id and batch:status.
type xmlBatchCodec struct{}

func (xmlBatchCodec) encode(items []*batchItem) ([]byte, string, error) {
	ns := map[string]string{"batch": parsable.NSBatch, "gd": parsable.NSGData}
	for _, it := range items {
		if it.entity != nil {
			parsable.MergeNamespaces(ns, it.entity)
		}
	}

	w := parsable.NewDocumentWriter(xml.Name{Space: parsable.NSAtom, Local: "feed"}, ns)
	for _, it := range items {
		tags := func(w *parsable.XMLWriter) {
			w.Element("batch:id", it.id)
			w.Open("batch:operation")
			w.Attr("type", it.kind.String())
			w.Close()
		}

		if it.kind == BatchQuery {
			w.Open("entry")
			w.Element("id", it.uri)
			tags(w)
			w.Close()
			continue
		}
		w.ChildWith(it.entity, tags)
	}
	w.Close()

	return w.Bytes(), "application/atom+xml", nil
}

func (xmlBatchCodec) decode(s *Service, _ *http.Response, body []byte, items []*batchItem) (map[string]BatchResult, error) {
	root, err := parsable.ParseDocument(body)
	if err != nil {
		return nil, err
	}
	if !root.Is(parsable.NSAtom, "feed") {
		return nil, domain.ProtocolError(string(OpBatch), "batch response root is <%s>, not a feed", root.QName())
	}

	byID := indexItems(items)
	out := make(map[string]BatchResult, len(items))
	interrupted := ""

	for _, child := range root.Children {
		if child.Is(parsable.NSBatch, "interrupted") {
			interrupted, _ = child.Attr("", "reason")
			if interrupted == "" {
				interrupted = "interrupted"
			}
			logger.Warn("Batch interrupted: %s", interrupted)
			continue
		}
		if !child.Is(parsable.NSAtom, "entry") {
			continue
		}

		idEl := child.Child(parsable.NSBatch, "id")
		if idEl == nil {
			logger.Debug("Batch response entry without batch:id")
			continue
		}
		it, ok := byID[strings.TrimSpace(idEl.Text)]
		if !ok {
			logger.Debug("Batch response for unknown id %q", idEl.Text)
			continue
		}

		status := child.Child(parsable.NSBatch, "status")
		if status == nil {
			out[it.id] = BatchResult{Err: domain.ProtocolError(string(OpBatch), "batch item %s has no status", it.id)}
			continue
		}
		codeAttr, _ := status.Attr("", "code")
		code, err := strconv.Atoi(codeAttr)
		if err != nil {
			out[it.id] = BatchResult{Err: domain.ProtocolError(string(OpBatch), "batch item %s has status %q", it.id, codeAttr)}
			continue
		}
		logBatchResult(it, code)

		entry := withoutBatchElements(child)
		if !success(code) {
			reason, _ := status.Attr("", "reason")
			e := &domain.ServiceError{
				Kind:   statusKind(it.kind.op(), code),
				Op:     string(it.kind.op()),
				Status: code,
				Reason: reason,
			}
			if content := entry.Child(parsable.NSAtom, "content"); content != nil {
				e.Message = truncate(strings.TrimSpace(content.Text))
			}
			out[it.id] = BatchResult{Err: e}
			continue
		}

		if it.kind == BatchDelete {
			out[it.id] = BatchResult{}
			continue
		}
		e := it.newEntity()
		if err := parsable.DecodeXML(entry, e, s.cfg.ParseOptions); err != nil {
			out[it.id] = BatchResult{Err: err}
			continue
		}
		out[it.id] = BatchResult{Entry: e}
	}

	if interrupted != "" {
		for _, it := range items {
			if _, ok := out[it.id]; !ok {
				out[it.id] = BatchResult{Err: &domain.ServiceError{
					Kind:    domain.ErrWithBatchOperation,
					Op:      string(OpBatch),
					Message: "batch interrupted: " + interrupted,
				}}
			}
		}
	}
	return out, nil
}

// withoutBatchElements returns a copy of el without its batch:* children.
func withoutBatchElements(el *parsable.Element) *parsable.Element {
	cp := *el
	cp.Children = make([]*parsable.Element, 0, len(el.Children))
	for _, c := range el.Children {
		if c.Name.Space != parsable.NSBatch {
			cp.Children = append(cp.Children, c)
		}
	}
	return &cp
}

// jsonBatchCodec speaks the multipart/mixed batch protocol: each item is an
// embedded HTTP request in its own application/http part, correlated by
// Content-ID.
type jsonBatchCodec struct{}

func (jsonBatchCodec) encode(items []*batchItem) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, it := range items {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", "application/http")
		h.Set("Content-ID", "<"+it.id+">")
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}

		req, err := innerRequest(it)
		if err != nil {
			return nil, "", err
		}
		if err := req.Write(part); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "multipart/mixed; boundary=" + mw.Boundary(), nil
}

func innerRequest(it *batchItem) (*http.Request, error) {
	var (
		method string
		body   io.Reader
	)
	switch it.kind {
	case BatchQuery:
		method = http.MethodGet
	case BatchInsert:
		method = http.MethodPost
		body = bytes.NewReader(parsable.ToJSON(it.entity))
	case BatchUpdate:
		method = http.MethodPut
		body = bytes.NewReader(parsable.ToJSON(it.entity))
	case BatchDelete:
		method = http.MethodDelete
	}

	req, err := http.NewRequest(method, it.uri, body)
	if err != nil {
		return nil, domain.ProtocolError(string(OpBatch), "invalid URI %q for batch item %s: %v", it.uri, it.id, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", FormatJSON.ContentType())
	}
	if it.entity != nil && it.kind != BatchInsert {
		if etag := it.entity.BaseEntry().ETag(); etag != "" {
			req.Header.Set("If-Match", etag)
		}
	}
	return req, nil
}

func (jsonBatchCodec) decode(s *Service, resp *http.Response, body []byte, items []*batchItem) (map[string]BatchResult, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, domain.ProtocolError(string(OpBatch), "batch response has content type %q", resp.Header.Get("Content-Type"))
	}

	byID := indexItems(items)
	out := make(map[string]BatchResult, len(items))
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ProtocolError(string(OpBatch), "reading batch response: %v", err)
		}

		id := contentID(part.Header.Get("Content-ID"))
		it, ok := byID[id]
		if !ok {
			logger.Debug("Batch response part for unknown id %q", id)
			continue
		}

		out[it.id] = decodeJSONPart(s, it, part)
	}
	return out, nil
}

func decodeJSONPart(s *Service, it *batchItem, part io.Reader) BatchResult {
	inner, err := http.ReadResponse(bufio.NewReader(part), nil)
	if err != nil {
		return BatchResult{Err: domain.ProtocolError(string(OpBatch), "batch item %s: %v", it.id, err)}
	}
	defer inner.Body.Close()

	data, err := io.ReadAll(inner.Body)
	if err != nil {
		return BatchResult{Err: domain.ProtocolError(string(OpBatch), "batch item %s: %v", it.id, err)}
	}
	logBatchResult(it, inner.StatusCode)

	if !success(inner.StatusCode) {
		return BatchResult{Err: s.decodeError(it.kind.op(), inner, data)}
	}
	if it.kind == BatchDelete {
		return BatchResult{}
	}

	e := it.newEntity()
	if err := parsable.FromJSON(data, e, s.cfg.ParseOptions); err != nil {
		return BatchResult{Err: err}
	}
	return BatchResult{Entry: e}
}

// contentID strips the angle brackets and the "response-" prefix servers add.
func contentID(h string) string {
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(h), "<"), ">")
	return strings.TrimPrefix(id, "response-")
}
