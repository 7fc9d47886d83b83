package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletPageAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantTotal int
		wantPages int
		wantPage  int
	}{
		{
			name:    "bare array",
			body:    `[{"id":1,"wallet_address":"a","is_active":true},{"id":2,"wallet_address":"b"}]`,
			wantLen: 2, wantTotal: 2, wantPages: 1, wantPage: 1,
		},
		{
			name:    "paged object",
			body:    `{"wallets":[{"id":3,"wallet_address":"c"}],"total":21,"page":3,"totalPages":3}`,
			wantLen: 1, wantTotal: 21, wantPages: 3, wantPage: 3,
		},
		{
			name:    "object without paging fields",
			body:    `{"wallets":[{"id":3},{"id":4}]}`,
			wantLen: 2, wantTotal: 2, wantPages: 1, wantPage: 1,
		},
		{
			name:    "empty array",
			body:    ` [] `,
			wantLen: 0, wantTotal: 0, wantPages: 1, wantPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page WalletPage
			require.NoError(t, json.Unmarshal([]byte(tt.body), &page))
			assert.Len(t, page.Wallets, tt.wantLen)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.Page)
		})
	}
}

func TestLogPageAcceptsBothShapes(t *testing.T) {
	var arr LogPage
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"event_type":"buy","amount_in":"1000","token_decimals":6,"created_at":"2025-01-01T00:00:00"}]`), &arr))
	require.Len(t, arr.Logs, 1)
	assert.Equal(t, 1, arr.TotalPages)
	require.NotNil(t, arr.Logs[0].TokenDecimals)
	assert.Equal(t, 6, *arr.Logs[0].TokenDecimals)
	assert.Nil(t, arr.Logs[0].AmountOut)

	var obj LogPage
	require.NoError(t, json.Unmarshal([]byte(`{"logs":[],"total_count":42,"page":2,"limit":10,"total_pages":5}`), &obj))
	assert.Equal(t, 42, obj.TotalCount)
	assert.Equal(t, 2, obj.Page)
	assert.Equal(t, 5, obj.TotalPages)

	var bad LogPage
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}

func TestWalletSettingsOmitsUnsetCaps(t *testing.T) {
	zero := 0
	data, err := json.Marshal(WalletSettings{
		SwapStrategy:          "none",
		MaxBuysPerTokenPerDay: &zero,
	})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "max_buys_per_mirror_per_hour")
	assert.NotContains(t, m, "max_buys_per_mirror_per_day")
	assert.Equal(t, 0.0, m["max_buys_per_token_per_day"], "a cap of zero is still sent")
}
