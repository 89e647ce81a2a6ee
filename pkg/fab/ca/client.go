/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fabricca

import (
	"bytes"
	reqContext "context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	cfsslapi "github.com/cloudflare/cfssl/api"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/hyperledger/fabric-devtools-go/pkg/common/errors/status"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config"
	"github.com/hyperledger/fabric-devtools-go/pkg/core/config/endpoint"
)

const apiPath = "/api/v1/"

func newHTTPClient(cfg config.CAConfig) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if endpoint.IsTLSEnabled(cfg.URL) {
		pool, err := cfg.TLSCACerts.CertPool()
		if err != nil {
			return nil, err
		}
		tr.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return &http.Client{Transport: tr}, nil
}

func (im *FabricCA) getURL(endpoint string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(im.config.URL))
	if err != nil {
		return "", errors.Wrapf(err, "invalid URL of certificate authority [%s]", im.name)
	}
	if u.Scheme != "https" {
		u.Scheme = "http"
	}
	if u.Host == "" {
		return "", errors.Errorf("invalid URL of certificate authority [%s]: %s", im.name, im.config.URL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPath + endpoint
	return u.String(), nil
}

func (im *FabricCA) newPost(reqCtx reqContext.Context, endpoint string, reqBody []byte) (*http.Request, error) {
	curl, err := im.getURL(endpoint)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, curl, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrapf(err, "failed posting to %s", curl)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// sendReq sends a request to the fabric-ca-server and decodes the result.
// Errors reported by the server are FabricCAServerStatus statuses carrying the
// server code and message.
func (im *FabricCA) sendReq(req *http.Request, result interface{}) error {
	logger.Debugf("Sending %s request to %s", req.Method, req.URL)

	resp, err := im.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s failure of request to %s", req.Method, req.URL)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debugf("Failed to close the response body: %s", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response of request to %s", req.URL)
	}

	var body *cfsslapi.Response
	if len(respBody) > 0 {
		body = new(cfsslapi.Response)
		if err := json.Unmarshal(respBody, body); err != nil {
			return errors.Wrapf(err, "failed to parse response: %s", respBody)
		}
		if len(body.Errors) > 0 {
			var msgs []string
			for _, e := range body.Errors {
				msgs = append(msgs, e.Message)
			}
			return status.New(status.FabricCAServerStatus, int32(body.Errors[0].Code), strings.Join(msgs, "; "), []interface{}{req.URL.String()})
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return status.New(status.FabricCAServerStatus, int32(resp.StatusCode), http.StatusText(resp.StatusCode), []interface{}{req.URL.String()})
	}
	if body == nil {
		return errors.Errorf("empty response body from %s", req.URL)
	}
	if !body.Success {
		return errors.Errorf("server returned failure for request to %s", req.URL)
	}

	if result != nil {
		return mapstructure.Decode(body.Result, result)
	}
	return nil
}
