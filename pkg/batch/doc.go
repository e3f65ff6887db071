// Package batch fans a list of XML API requests out over a bounded worker pool.
//
// Each request goes through the regular cached pipeline, so repeated
// requests in a batch are served from cache once the first has landed.
//
// Example usage:
//
//	fetcher := batch.NewFetcher(xmlClient, batch.DefaultConfig())
//	results, err := fetcher.FetchAll(ctx, []batch.Request{
//		{Action: "char/MarketOrders", Params: url.Values{"characterID": {"123"}}},
//		{Action: "char/MarketOrders", Params: url.Values{"characterID": {"456"}}},
//	})
//
// The fetcher:
//   - Starts up to MaxConcurrency workers
//   - Runs each request under its own timeout
//   - Returns one Result per request, in request order
//   - Keeps going after individual failures and reports them together
package batch
