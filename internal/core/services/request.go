package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/custodia-labs/gdata/internal/core/domain"
	"github.com/custodia-labs/gdata/internal/logger"
)

// send performs one logical request: authorization check, request, at most
// one redirect, and a fully read body. Cancellation is checked before the
// request is sent and after the response is read.
func (s *Service) send(ctx context.Context, ad *domain.AuthorizationDomain, op Op, method, uri string,
	body []byte, header http.Header) (*http.Response, []byte, error) {
	if ad != nil && (s.cfg.Authorizer == nil || !s.cfg.Authorizer.IsAuthorizedFor(*ad)) {
		return nil, nil, &domain.ServiceError{
			Kind:    domain.ErrAuthenticationRequired,
			Op:      string(op),
			Message: fmt.Sprintf("not authorized for %s", ad),
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, domain.Cancelled(err)
	}

	resp, err := s.roundTrip(ctx, ad, op, method, uri, body, header)
	if err != nil {
		return nil, nil, err
	}

	if isRedirect(resp.StatusCode) {
		target, err := redirectTarget(op, resp)
		drain(resp)
		if err != nil {
			return nil, nil, err
		}
		logger.L().Debug("following redirect", zap.String("op", string(op)), zap.String("location", target))
		resp, err = s.roundTrip(ctx, ad, op, method, target, body, header)
		if err != nil {
			return nil, nil, err
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, domain.Cancelled(ctxErr)
		}
		return nil, nil, &domain.ServiceError{Kind: opKind(op), Op: string(op), Status: resp.StatusCode,
			Message: "reading response body", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, domain.Cancelled(err)
	}
	return resp, data, nil
}

func (s *Service) roundTrip(ctx context.Context, ad *domain.AuthorizationDomain, op Op, method, uri string,
	body []byte, header http.Header) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, domain.ProtocolError(string(op), "invalid request URI %q: %v", uri, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	s.addStandardHeaders(req)
	if ad != nil {
		if err := s.cfg.Authorizer.Authorize(req, *ad); err != nil {
			return nil, err
		}
	}

	resp, err := s.cfg.Transport.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.Cancelled(ctxErr)
		}
		return nil, &domain.ServiceError{Kind: opKind(op), Op: string(op), Message: "sending request", Err: err}
	}
	logger.L().Debug("gdata request",
		zap.String("op", string(op)),
		zap.String("method", method),
		zap.String("uri", uri),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (s *Service) addStandardHeaders(req *http.Request) {
	if s.cfg.APIVersion != "" {
		req.Header.Set("GData-Version", s.cfg.APIVersion)
	}
	if s.cfg.ClientID != "" {
		req.Header.Set("X-GData-Client", s.cfg.ClientID)
	}
	if s.cfg.DeveloperKey != "" {
		req.Header.Set("X-GData-Key", "key="+s.cfg.DeveloperKey)
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func redirectTarget(op Op, resp *http.Response) (string, error) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", domain.ProtocolError(string(op), "redirect (%d) without a Location header", resp.StatusCode)
	}
	target, err := url.Parse(loc)
	if err != nil {
		return "", domain.ProtocolError(string(op), "invalid redirect location %q", loc)
	}
	if resp.Request != nil && resp.Request.URL != nil {
		target = resp.Request.URL.ResolveReference(target)
	}
	return target.String(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
