package btcchina

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"resty.dev/v3"

	"btcchina/pkg/core"
)

const maxBodySnippet = 256

// Response is a successfully normalized API response.
type Response struct {
	// Data is the decoded body: map[string]any for objects, []any for arrays.
	Data any

	raw []byte
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte {
	return r.raw
}

// Object returns Data as a JSON object.
func (r *Response) Object() (map[string]any, bool) {
	m, ok := r.Data.(map[string]any)
	return m, ok
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if err := sonic.Unmarshal(r.raw, v); err != nil {
		return core.NewParseError(err, "decode response: %v", err)
	}
	return nil
}

// DecodeResult unmarshals the JSON-RPC "result" member of a private response into v.
func (r *Response) DecodeResult(v any) error {
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := sonic.Unmarshal(r.raw, &envelope); err != nil {
		return core.NewParseError(err, "decode response: %v", err)
	}
	if len(envelope.Result) == 0 {
		return core.NewParseError(nil, "response has no result member")
	}
	if err := sonic.Unmarshal(envelope.Result, v); err != nil {
		return core.NewParseError(err, "decode result: %v", err)
	}
	return nil
}

// requestInfo describes one dispatched request for error messages.
type requestInfo struct {
	httpMethod string
	url        string
	params     any
	// private calls only
	rpcMethod string
	tonce     int64
}

func (r requestInfo) String() string {
	params, err := sonic.MarshalString(r.params)
	if err != nil {
		params = fmt.Sprint(r.params)
	}
	if r.rpcMethod != "" && r.tonce != 0 {
		return fmt.Sprintf("%s request to url %s with tonce %d, method %s and params %s",
			r.httpMethod, r.url, r.tonce, r.rpcMethod, params)
	}
	if r.rpcMethod != "" {
		return fmt.Sprintf("%s request to url %s with method %s and params %s",
			r.httpMethod, r.url, r.rpcMethod, params)
	}
	if r.params == nil {
		return fmt.Sprintf("%s request to url %s", r.httpMethod, r.url)
	}
	return fmt.Sprintf("%s request to url %s with parameters %s", r.httpMethod, r.url, params)
}

// normalize classifies the outcome of one request. The checks run in a fixed order and
// the first match wins: transport failure, non-2xx status, unparseable body, vendor
// error member, success.
func normalize(info requestInfo, resp *resty.Response, err error) (*Response, error) {
	if err := checkTransport(info, resp, err); err != nil {
		return nil, err
	}

	body := resp.Bytes()

	var data any
	if err := sonic.Unmarshal(body, &data); err != nil {
		return nil, core.NewParseError(err,
			"could not parse response. HTTP status code %d. Response: %s",
			resp.StatusCode(), snippet(body)).WithRequest(info.String())
	}

	switch v := data.(type) {
	case map[string]any:
		if apiErr, ok := v["error"]; ok {
			return nil, vendorError(apiErr).WithRequest(info.String())
		}
	case []any:
	default:
		return nil, core.NewParseError(nil,
			"response is not a JSON object or array. HTTP status code %d. Response: %s",
			resp.StatusCode(), snippet(body)).WithRequest(info.String())
	}

	return &Response{Data: data, raw: body}, nil
}

// checkTransport covers the first two normalization steps, shared with the fiat-rate page fetch.
func checkTransport(info requestInfo, resp *resty.Response, err error) *core.Error {
	if err != nil {
		return core.NewTransportError(err).WithRequest(info.String())
	}
	if resp == nil {
		return core.NewTransportError(nil).WithRequest(info.String())
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return core.NewHTTPStatusError(code, resp.Status()).WithRequest(info.String())
	}
	return nil
}

func vendorError(v any) *core.Error {
	m, ok := v.(map[string]any)
	if !ok {
		return core.NewAPIError(0, fmt.Sprint(v))
	}
	message, _ := m["message"].(string)
	return core.NewAPIError(vendorCode(m["code"]), message)
}

func vendorCode(v any) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case string:
		if n, err := strconv.Atoi(c); err == nil {
			return n
		}
	case json.Number:
		if n, err := c.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet]) + "..."
	}
	return string(body)
}
