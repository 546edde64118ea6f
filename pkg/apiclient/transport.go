/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package apiclient

import (
	"context"
	"github.com/rs/dnscache"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const dnsRefreshInterval = 5 * time.Minute

type (
	// dnsCache resolves API hosts once and spreads connections over the resolved addresses.
	dnsCache struct {
		resolver *dnscache.Resolver
		next     int64
		stopCh   chan struct{}
		stopOnce sync.Once
	}
)

func newDNSCache() *dnsCache {
	return &dnsCache{
		resolver: &dnscache.Resolver{},
		stopCh:   make(chan struct{}),
	}
}

func (d *dnsCache) start() {
	go func() {
		ticker := time.NewTicker(dnsRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-d.stopCh:
				return
			case <-ticker.C:
				d.resolver.RefreshWithOptions(dnscache.ResolverRefreshOptions{ClearUnused: true})
			}
		}
	}()
}

func (d *dnsCache) stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

func (d *dnsCache) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ips, err := d.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for i := 0; i < len(ips); i++ {
		ip := ips[int(atomic.AddInt64(&d.next, 1))%len(ips)]
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (d *dnsCache) httpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         d.dial,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
