// ABOUTME: Request executor shared by every domain operation
// ABOUTME: Applies timeouts, reads the body once, decodes and classifies the outcome

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

const (
	msgEmptyBody   = "Respuesta vacía del servidor"
	msgBadJSON     = "Error al procesar la respuesta del servidor"
	msgReadFailed  = "Error al leer la respuesta del servidor"
	msgOperationOK = "Operación exitosa"
)

// exchange is one completed HTTP round trip with its body already read.
type exchange struct {
	status    int
	header    http.Header
	body      rawBody
	requestID string
}

// rawBody is a response body after the JSON-or-text heuristic.
type rawBody struct {
	raw      []byte
	isJSON   bool // body parsed as JSON
	value    any  // parsed JSON value when isJSON
	text     string
	parseErr error // body looked like JSON but did not parse
	readErr  error
}

func (b rawBody) empty() bool {
	return b.text == "" && b.readErr == nil
}

// object returns the body as a JSON object, or nil.
func (b rawBody) object() map[string]any {
	m, _ := b.value.(map[string]any)
	return m
}

// backendMessage returns the backend's own explanation: message, error or
// detail from a JSON object, else the raw text.
func (b rawBody) backendMessage() string {
	if obj := b.object(); obj != nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return ""
	}
	if b.isJSON {
		return ""
	}
	return b.text
}

// decodeBody applies the JSON-or-text heuristic to a fully read body.
func decodeBody(contentType string, raw []byte) rawBody {
	b := rawBody{raw: raw, text: strings.TrimSpace(string(raw))}
	if b.text == "" {
		return b
	}

	looksJSON := strings.Contains(strings.ToLower(contentType), "json") ||
		strings.HasPrefix(b.text, "{") || strings.HasPrefix(b.text, "[")
	if !looksJSON {
		return b
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		b.parseErr = err
		return b
	}
	b.isJSON = true
	b.value = v
	return b
}

// send performs one round trip bounded by timeout. The returned error is the
// raw transport error; callers classify it against their own context.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, header http.Header, timeout time.Duration) (*exchange, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("API request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	ex := &exchange{
		status:    resp.StatusCode,
		header:    resp.Header,
		body:      decodeBody(resp.Header.Get("Content-Type"), raw),
		requestID: requestID,
	}
	ex.body.readErr = readErr

	c.logger.Debug("API request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)
	return ex, nil
}

// Do executes an authenticated request and decodes a 2xx JSON body into T.
// It never panics and reports every failure inside the envelope.
func Do[T any](ctx context.Context, c *Client, method, path string, body any, extra http.Header) Response[T] {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return failure[T](KindValidation, 0, fmt.Sprintf("no se pudo codificar la petición: %v", err), "Error al preparar la petición")
		}
		payload = b
	}

	header := c.Headers()
	for k, vs := range extra {
		header.Del(k)
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	ex, err := c.send(ctx, method, path, payload, header, time.Duration(c.cfg.RequestTimeout))
	if err != nil {
		return transportFailure[T](ctx, err)
	}
	return classify[T](c, ex)
}

// classify maps a completed exchange onto the envelope. Only the 401 branch
// touches shared state.
func classify[T any](c *Client, ex *exchange) Response[T] {
	status := ex.status
	b := ex.body

	if status >= 200 && status < 300 {
		return success[T](ex)
	}

	switch {
	case status == http.StatusUnauthorized:
		c.store.Clear()
		c.logger.Info("Backend rejected token, session cleared", "request_id", ex.requestID)
		return failure[T](KindUnauthorized, status, "Sesión expirada. Inicie sesión nuevamente.", "No autorizado")
	case status == http.StatusForbidden:
		return failure[T](KindForbidden, status, "No tiene permisos para realizar esta operación.", "Acceso denegado")
	case status == http.StatusNotFound:
		return failure[T](KindNotFound, status, "Recurso no encontrado.", orDefault(b.backendMessage(), "No encontrado"))
	case status >= 500:
		return failure[T](KindServer, status, "Error del servidor. Intente nuevamente más tarde.", orDefault(b.backendMessage(), "Error del servidor"))
	default:
		msg := orDefault(b.backendMessage(), fmt.Sprintf("Error HTTP %d", status))
		return failure[T](KindBackend, status, msg, msg)
	}
}

// success builds the envelope for a 2xx exchange.
func success[T any](ex *exchange) Response[T] {
	b := ex.body
	resp := Response[T]{Success: true, Status: ex.status}

	switch {
	case b.readErr != nil:
		return failure[T](KindDecode, ex.status, b.readErr.Error(), msgReadFailed)
	case b.empty():
		resp.Message = msgEmptyBody
		return resp
	case b.parseErr != nil:
		return failure[T](KindDecode, ex.status, b.parseErr.Error(), msgBadJSON)
	case !b.isJSON:
		// Plain text: a string payload receives it, anything else gets it as message.
		if s, ok := any(&resp.Data).(*string); ok {
			*s = b.text
		}
		resp.Message = b.text
		return resp
	}

	if err := json.Unmarshal(b.raw, &resp.Data); err != nil {
		return failure[T](KindDecode, ex.status, err.Error(), "Respuesta inesperada del servidor")
	}
	resp.Message = orDefault(b.backendMessage(), msgOperationOK)
	return resp
}

// transportFailure maps a round-trip error onto the envelope.
func transportFailure[T any](parent context.Context, err error) Response[T] {
	switch kind := transportKind(parent, err); kind {
	case KindTimeout:
		return failure[T](kind, 0, "La petición tardó demasiado tiempo. Verifique su conexión.", "Timeout de conexión")
	case KindCanceled:
		return failure[T](kind, 0, "La petición fue cancelada.", "Operación cancelada")
	case KindNetwork:
		return failure[T](kind, 0, "Error de red. Verifique su conexión a internet.", "Error de conexión")
	case KindPolicy:
		return failure[T](kind, 0, "El servidor fue rechazado por la política de conexión (TLS o redirección).", "Error de política de conexión")
	default:
		return failure[T](KindUnknown, 0, err.Error(), "Error en la operación")
	}
}

// transportKind classifies an error returned by http.Client.Do. parent is
// the caller's context, used to tell a caller cancel from a deadline.
func transportKind(parent context.Context, err error) ErrorKind {
	if errors.Is(parent.Err(), context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	if errors.Is(err, errRedirectPolicy) {
		return KindPolicy
	}
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
		recordErr        tls.RecordHeaderError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &verifyErr) || errors.As(err, &recordErr) {
		return KindPolicy
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindNetwork
	}
	return KindUnknown
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Get issues a raw authenticated GET. Data holds the JSON body verbatim.
func (c *Client) Get(ctx context.Context, path string) Response[json.RawMessage] {
	return Do[json.RawMessage](ctx, c, http.MethodGet, path, nil, nil)
}

// Post issues a raw authenticated POST.
func (c *Client) Post(ctx context.Context, path string, body any) Response[json.RawMessage] {
	return Do[json.RawMessage](ctx, c, http.MethodPost, path, body, nil)
}

// Put issues a raw authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, body any) Response[json.RawMessage] {
	return Do[json.RawMessage](ctx, c, http.MethodPut, path, body, nil)
}

// Patch issues a raw authenticated PATCH.
func (c *Client) Patch(ctx context.Context, path string, body any) Response[json.RawMessage] {
	return Do[json.RawMessage](ctx, c, http.MethodPatch, path, body, nil)
}

// Delete issues a raw authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) Response[json.RawMessage] {
	return Do[json.RawMessage](ctx, c, http.MethodDelete, path, nil, nil)
}
