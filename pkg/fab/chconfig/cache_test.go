/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chconfig

import (
	"context"
	"testing"
	"time"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/fabric-devtools-go/pkg/fab/mocks"
)

type countingProvider struct {
	calls  map[string]int
	config *common.Config
	err    error
}

func (p *countingProvider) get(_ context.Context, channelID string) (*common.Config, error) {
	p.calls[channelID]++
	if p.err != nil {
		return nil, p.err
	}
	return p.config, nil
}

func TestCache(t *testing.T) {
	builder := &mocks.MockConfigBuilder{ApplicationOrgs: map[string]string{"Org1": "Org1MSP"}}
	provider := &countingProvider{calls: map[string]int{}, config: builder.Build()}

	now := time.Now()
	cache := NewCache(provider.get, WithRefreshInterval(time.Minute))
	cache.now = func() time.Time { return now }

	cfg, err := cache.Get(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Org1MSP"}, cfg.MSPIDs())

	_, err = cache.Get(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls[channelID])

	_, err = cache.Get(context.Background(), "other")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls["other"])

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls[channelID])

	cache.Invalidate()
	_, err = cache.Get(context.Background(), channelID)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls[channelID])
}

func TestCacheError(t *testing.T) {
	provider := &countingProvider{calls: map[string]int{}, err: errors.New("peer unreachable")}
	cache := NewCache(provider.get)

	_, err := cache.Get(context.Background(), channelID)
	assert.EqualError(t, err, "retrieving configuration of channel [mychannel] failed: peer unreachable")

	_, err = cache.Get(context.Background(), channelID)
	assert.Error(t, err)
	assert.Equal(t, 2, provider.calls[channelID])
}
