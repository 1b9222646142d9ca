// Package pool bounds the number of concurrently leased resources and
// recycles them between users.
//
// A Pool hands out Leases. Each lease wraps one resource (in siteaudit a
// browser tab) that is exclusively owned by the holder until Release is
// called. Release soft-resets the resource within a bounded time and puts
// it back on the idle queue; a resource whose reset fails is discarded and
// a replacement is created lazily on a later Acquire.
//
// # Admission
//
// Admission uses a weighted semaphore sized to the pool capacity. A permit
// is taken before a resource is looked up or created and given back on
// every Release, whether the resource was kept or discarded. Permits track
// capacity slots, not physical resources, so the number of leased
// resources never exceeds capacity.
//
// # Churn
//
// Resources that keep failing their reset are replaced, but the total
// number of creations over the pool lifetime is capped by
// Config.MaxCreations. Past the cap Acquire fails with ErrPoolDegraded and
// Stats reports Degraded.
//
// # Example
//
//	p, err := pool.New(pool.Config{MaxResources: 4}, pool.FactoryFunc[*browser.Tab](driver.NewTab))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	err = pool.WithLease(ctx, p, func(ctx context.Context, tab *browser.Tab) error {
//	    _, err := tab.Navigate(ctx, "https://example.com")
//	    return err
//	})
package pool
