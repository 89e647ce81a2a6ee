/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package chconfig

import (
	reqContext "context"
	"sync"
	"time"

	"github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

const defaultRefreshInterval = time.Second * 90

// Provider retrieves the current configuration of a channel
type Provider func(reqCtx reqContext.Context, channelID string) (*common.Config, error)

// CacheOpt configures the cache
type CacheOpt func(c *Cache)

// WithRefreshInterval sets the interval after which a cached channel
// configuration is retrieved again
func WithRefreshInterval(value time.Duration) CacheOpt {
	return func(c *Cache) {
		c.refreshInterval = value
	}
}

type cacheEntry struct {
	cfg     *ChannelCfg
	expires time.Time
}

// Cache holds channel configurations, keyed by channel ID
type Cache struct {
	provider        Provider
	refreshInterval time.Duration
	now             func() time.Time

	mutex   sync.Mutex
	entries map[string]cacheEntry
}

// NewCache returns a channel config cache backed by the provider
func NewCache(provider Provider, opts ...CacheOpt) *Cache {
	c := &Cache{
		provider:        provider,
		refreshInterval: defaultRefreshInterval,
		now:             time.Now,
		entries:         make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the configuration of the channel, retrieving it if it is not
// cached or has expired. Errors are not cached.
func (c *Cache) Get(reqCtx reqContext.Context, channelID string) (*ChannelCfg, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[channelID]; ok && c.now().Before(e.expires) {
		return e.cfg, nil
	}

	logger.Debugf("Retrieving configuration of channel [%s]", channelID)
	config, err := c.provider(reqCtx, channelID)
	if err != nil {
		return nil, errors.WithMessagef(err, "retrieving configuration of channel [%s] failed", channelID)
	}

	cfg, err := New(channelID, config)
	if err != nil {
		return nil, err
	}

	c.entries[channelID] = cacheEntry{cfg: cfg, expires: c.now().Add(c.refreshInterval)}
	return cfg, nil
}

// Invalidate drops all cached configurations
func (c *Cache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
}
