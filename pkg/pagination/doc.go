// Package pagination drains continuation-token paginated YouTube Data API
// listings into one ordered collection.
//
// The API returns at most 50 items per page together with an opaque
// nextPageToken; the token's absence marks the last page. Pages are fetched
// strictly one after another because every request goes through the shared
// key pool.
//
// Example usage:
//
//	p := pagination.New(pagination.DefaultConfig(), logger)
//	res := pagination.Drain(ctx, p, "search", func(ctx context.Context, token string) (pagination.Page[Video], error) {
//		// issue one request, passing token when non-empty
//	})
//	if res.Err != nil {
//		// res.Items still holds every page fetched before the failure
//	}
//
// The paginator:
//   - Captures the total-results estimate from the first page only
//   - Appends items in page order
//   - Logs progress after every page that carries a continuation token
//   - Returns partial data when a page request fails
//   - Stops after Config.MaxPages pages even if the remote keeps paging
package pagination
