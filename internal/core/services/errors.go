package services

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/core/parsable"
	"github.com/custodia-labs/gdata/internal/logger"
)

// maxMessage caps the amount of an unstructured body copied into an error.
const maxMessage = 512

func opKind(op Op) error {
	switch op {
	case OpQuery:
		return domain.ErrWithQuery
	case OpInsert:
		return domain.ErrWithInsertion
	case OpUpdate:
		return domain.ErrWithUpdate
	case OpDelete:
		return domain.ErrWithDeletion
	default:
		return domain.ErrWithBatchOperation
	}
}

// statusKind maps a failure status to an error kind.
func statusKind(op Op, status int) error {
	switch status {
	case http.StatusBadRequest:
		if op == OpQuery {
			return domain.ErrBadQueryParameter
		}
	case http.StatusUnauthorized:
		return domain.ErrAuthenticationRequired
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusPreconditionFailed:
		return domain.ErrPreconditionFailed
	case http.StatusServiceUnavailable:
		return domain.ErrUnavailable
	}
	return opKind(op)
}

func (s *Service) decodeError(op Op, resp *http.Response, body []byte) error {
	if s.cfg.ErrorParser != nil {
		return s.cfg.ErrorParser(op, resp, body)
	}
	if s.cfg.Format == FormatJSON {
		return DecodeJSONError(op, resp, body)
	}
	return DecodeXMLError(op, resp, body)
}

func baseError(op Op, resp *http.Response) *domain.ServiceError {
	return &domain.ServiceError{
		Kind:   statusKind(op, resp.StatusCode),
		Op:     string(op),
		Status: resp.StatusCode,
		Reason: http.StatusText(resp.StatusCode),
	}
}

// DecodeXMLError decodes a GData <errors> body. The first error becomes the
// returned error's detail; the rest are logged. Bodies of any other shape
// are kept as the message.
func DecodeXMLError(op Op, resp *http.Response, body []byte) error {
	e := baseError(op, resp)

	details := parseXMLErrors(body)
	if len(details) == 0 {
		e.Message = truncate(strings.TrimSpace(string(body)))
		return e
	}

	e.Detail = &details[0]
	for _, d := range details[1:] {
		logger.Debug("Additional %s error: %s", op, d)
	}
	return e
}

func parseXMLErrors(body []byte) []domain.ErrorDetail {
	root, err := parsable.ParseDocument(body)
	if err != nil || root.Name.Local != "errors" {
		return nil
	}

	var details []domain.ErrorDetail
	for _, child := range root.Children {
		if child.Name.Local != "error" {
			continue
		}
		var d domain.ErrorDetail
		for _, field := range child.Children {
			text := strings.TrimSpace(field.Text)
			switch field.Name.Local {
			case "domain":
				d.Domain = text
			case "code":
				d.Code = text
			case "location":
				d.Location = text
			case "internalReason":
				d.Reason = text
			}
		}
		details = append(details, d)
	}
	return details
}

// DecodeJSONError decodes a Google JSON error body through googleapi. The
// googleapi.Error is kept as the cause so callers can inspect it.
func DecodeJSONError(op Op, resp *http.Response, body []byte) error {
	e := baseError(op, resp)

	replay := &http.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
	var gerr *googleapi.Error
	if !errors.As(googleapi.CheckResponse(replay), &gerr) {
		e.Message = truncate(strings.TrimSpace(string(body)))
		return e
	}

	e.Err = gerr
	e.Message = gerr.Message
	if e.Message == "" {
		e.Message = truncate(strings.TrimSpace(gerr.Body))
	}
	if len(gerr.Errors) > 0 {
		e.Detail = &domain.ErrorDetail{Code: gerr.Errors[0].Reason, Reason: gerr.Errors[0].Message}
		for _, item := range gerr.Errors[1:] {
			logger.Debug("Additional %s error: %s %s", op, item.Reason, item.Message)
		}
	}
	return e
}

func truncate(s string) string {
	if len(s) > maxMessage {
		return s[:maxMessage] + "..."
	}
	return s
}
