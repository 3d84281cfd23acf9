/*
 * Copyright 2025 DMH Technology Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package servicedesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmhtech/assetsync/pkg/logger"
	"github.com/dmhtech/assetsync/pkg/ratelimit"
)

func fastLimiter() *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{
		BaseInterval: time.Millisecond,
		MinInterval:  time.Millisecond,
		MaxInterval:  5 * time.Millisecond,
	})
}

func newTestClient(t *testing.T, dryRun bool, api http.HandlerFunc) *Client {
	t.Helper()

	var mux http.ServeMux

	mux.HandleFunc("/oauth/v2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-me", r.PostForm.Get("refresh_token"))

		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "zoho-token", ExpiresIn: 3600})
	})
	mux.HandleFunc("/", api)

	srv := httptest.NewServer(&mux)
	t.Cleanup(srv.Close)

	cfg := Config{
		Endpoint:      srv.URL,
		TokenEndpoint: srv.URL + "/oauth/v2/token",
		ClientID:      "id",
		ClientSecret:  "secret",
		RefreshToken:  "refresh-me",
		PageSize:      2,
		MaxRetries:    3,
		DryRun:        dryRun,
	}

	log := logger.NewTestLogger()
	auth := NewZohoAuthenticator(cfg, srv.Client(), log)

	return NewClient(cfg, srv.Client(), NewCachedTokenProvider(auth), fastLimiter(), log)
}

func assetPage(hasMore bool, assets ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"assets":    assets,
		"list_info": map[string]interface{}{"has_more_rows": hasMore},
	}
}

func TestListAssets_PaginatesAndFlattens(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-oauthtoken zoho-token", r.Header.Get("Authorization"))
		assert.Equal(t, acceptHeader, r.Header.Get("Accept"))

		var pagination struct {
			ListInfo listInfo `json:"list_info"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("input_data")), &pagination))
		assert.Equal(t, 2, pagination.ListInfo.RowCount)

		switch pagination.ListInfo.StartIndex {
		case 1:
			_ = json.NewEncoder(w).Encode(assetPage(true,
				map[string]interface{}{
					"id":            float64(1001),
					"name":          "PC-001",
					"serial_number": "SN1",
					"operating_system": map[string]interface{}{
						"os": "Windows 11 Pro",
					},
					"product": map[string]interface{}{
						"manufacturer": "Dell Inc.",
					},
					"product_type": map[string]interface{}{
						"api_plural_name": "asset_workstations",
					},
				},
				map[string]interface{}{
					"id":   float64(1002),
					"name": "SRV-001",
					"computer_system": map[string]interface{}{
						"system_manufacturer": "HPE",
					},
				}))
		case 3:
			_ = json.NewEncoder(w).Encode(assetPage(false,
				map[string]interface{}{"id": float64(1003), "name": "PC-002"}))
		default:
			t.Errorf("unexpected start index: %d", pagination.ListInfo.StartIndex)
		}
	})

	assets, err := client.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.Equal(t, "1001", assets[0].ID)
	assert.Equal(t, "PC-001", assets[0].Name)
	assert.Equal(t, "SN1", assets[0].SerialNumber)
	assert.Equal(t, "Windows 11 Pro", assets[0].OS)
	assert.Equal(t, "Dell Inc.", assets[0].Manufacturer)
	assert.Equal(t, "asset_workstations", assets[0].CIType)
	assert.NotEmpty(t, assets[0].RawJSON)

	// Manufacturer falls back to the computer_system block.
	assert.Equal(t, "HPE", assets[1].Manufacturer)

	assert.Equal(t, "1003", assets[2].ID)
}

func TestCreateAsset(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/asset_workstations", r.URL.Path)

		require.NoError(t, r.ParseForm())

		var payload map[string]map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("input_data")), &payload))

		// The type endpoint is plural, the payload key singular.
		fields := payload["asset_workstation"]
		require.NotNil(t, fields)
		assert.Equal(t, "PC-001", fields["name"])
		assert.NotContains(t, fields, "os", "empty values must be dropped")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"asset_workstation": map[string]interface{}{"id": float64(2001), "name": "PC-001"},
		})
	})

	id, err := client.CreateAsset(context.Background(), "asset_workstations",
		map[string]string{"name": "PC-001", "serial_number": "SN1", "os": ""})
	require.NoError(t, err)

	assert.Equal(t, "2001", id)
}

func TestCreateAsset_ReportsRejectedFields(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response_status": map[string]interface{}{
				"messages": []map[string]interface{}{
					{"message": "EXTRA_KEY_FOUND_IN_JSON", "field": "os"},
					{"message": "EXTRA_KEY_FOUND_IN_JSON", "field": "manufacturer"},
				},
			},
		})
	})

	_, err := client.CreateAsset(context.Background(), "asset_switches",
		map[string]string{"name": "SW-001", "os": "IOS", "manufacturer": "Cisco"})

	var rejection *ExtraFieldError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, []string{"os", "manufacturer"}, rejection.RejectedFields())
}

func TestUpdateAsset(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/assets/3001", r.URL.Path)

		require.NoError(t, r.ParseForm())

		var payload map[string]map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("input_data")), &payload))
		assert.Equal(t, "SN9", payload["asset"]["serial_number"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"asset": map[string]interface{}{"id": float64(3001)},
		})
	})

	err := client.UpdateAsset(context.Background(), "3001",
		map[string]string{"name": "PC-009", "serial_number": "SN9"})
	require.NoError(t, err)
}

func TestDryRunBlocksWrites(t *testing.T) {
	client := newTestClient(t, true, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("dry run must not reach the API")
		w.WriteHeader(http.StatusInternalServerError)
	})

	id, err := client.CreateAsset(context.Background(), "asset_workstations",
		map[string]string{"name": "PC-001"})
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, client.UpdateAsset(context.Background(), "3001",
		map[string]string{"name": "PC-001"}))
}

func TestWriteRetriesResendBody(t *testing.T) {
	calls := int32(0)

	client := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.NotEmpty(t, r.PostForm.Get("input_data"), "retry must carry the full body")

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"asset": map[string]interface{}{"id": float64(3001)},
		})
	})

	err := client.UpdateAsset(context.Background(), "3001",
		map[string]string{"name": "PC-001"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRequest_SecondUnauthorizedIsFatal(t *testing.T) {
	client := newTestClient(t, false, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListAssets(context.Background())
	assert.ErrorIs(t, err, errAuthFailed)
}

func TestParseExtraFields(t *testing.T) {
	assert.Nil(t, parseExtraFields([]byte("not json")))
	assert.Nil(t, parseExtraFields([]byte(`{"response_status":{"messages":[{"message":"OTHER"}]}}`)))

	fields := parseExtraFields([]byte(`{"response_status":{"messages":[
		{"message":"EXTRA_KEY_FOUND_IN_JSON","field":"os"},
		{"message":"EXTRA_KEY_FOUND_IN_JSON"}]}}`))
	assert.Equal(t, []string{"os"}, fields)
}
