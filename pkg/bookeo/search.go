package bookeo

import (
	"context"
	"iter"
	"net/url"
	"strconv"
	"time"
)

// timeFormat is the UTC instant format Bookeo expects for startTime/endTime.
const timeFormat = "2006-01-02T15:04:05Z"

// Chunk is a sub-interval of a search window covering at most 30 calendar
// days. Start is inclusive, End exclusive.
type Chunk struct {
	Start time.Time
	End   time.Time
}

// SplitWindow decomposes the half-open window [start, end) into consecutive
// chunks of at most maxChunkDays days. Chunks are contiguous, never
// overlap, and their union is exactly the window. An empty window produces
// no chunks.
func SplitWindow(start, end time.Time) []Chunk {
	var chunks []Chunk
	for cur := start; cur.Before(end); {
		chunkEnd := cur.AddDate(0, 0, maxChunkDays)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, Chunk{Start: cur, End: chunkEnd})
		cur = chunkEnd
	}
	return chunks
}

// chunkBounds converts a chunk's calendar-day boundaries to UTC instants.
// The chunk runs from local midnight of its first day to 23:59:59 local
// time on its last day; Bookeo interprets the transmitted instants in UTC.
func (c *Client) chunkBounds(chunk Chunk) (time.Time, time.Time) {
	year, month, day := chunk.Start.Date()
	startLocal := time.Date(year, month, day, 0, 0, 0, 0, c.location)

	year, month, day = chunk.End.Date()
	endLocal := time.Date(year, month, day, 0, 0, 0, 0, c.location).Add(-time.Second)

	return startLocal.UTC(), endLocal.UTC()
}

// SearchOptions controls booking search filters.
type SearchOptions struct {
	// ExpandCustomer requests the full customer block on each record.
	ExpandCustomer bool

	// IncludeCanceled includes canceled bookings in the results.
	IncludeCanceled bool
}

// SearchBookings streams every booking in the half-open window [start, end),
// interpreted as calendar days in the client's configured time zone.
//
// Windows longer than 30 days are split into chunks, since Bookeo rejects
// longer ranges, and each chunk's pages are followed through the cursor
// under info.paging. Records arrive in strict chunk-then-page order, each
// exactly once. The sequence is one-shot, forward-only, and lazy: breaking
// out of the range stops any further requests. A yielded error terminates
// the sequence.
func (c *Client) SearchBookings(ctx context.Context, start, end time.Time, opts SearchOptions) iter.Seq2[Booking, error] {
	return func(yield func(Booking, error) bool) {
		chunks := SplitWindow(start, end)

		for i, chunk := range chunks {
			startUTC, endUTC := c.chunkBounds(chunk)

			token := ""
			pageNumber := 0

			for {
				params := url.Values{}
				params.Set("startTime", startUTC.Format(timeFormat))
				params.Set("endTime", endUTC.Format(timeFormat))
				params.Set("itemsPerPage", strconv.Itoa(itemsPerPage))
				params.Set("expandCustomer", strconv.FormatBool(opts.ExpandCustomer))
				params.Set("includeCanceled", strconv.FormatBool(opts.IncludeCanceled))
				if token != "" {
					params.Set("pageNavigationToken", token)
					params.Set("pageNumber", strconv.Itoa(pageNumber))
				}

				var page bookingsPage
				if err := c.get(ctx, "/bookings", params, &page); err != nil {
					yield(Booking{}, err)
					return
				}

				for _, booking := range page.Data {
					if !yield(booking, nil) {
						return
					}
				}

				paging := page.Info.Paging
				if paging.NextPageURL == "" {
					break
				}

				token = paging.PageNavigationToken
				currentPage := paging.CurrentPage
				if currentPage == 0 {
					currentPage = 1
				}
				pageNumber = currentPage + 1
			}

			// Courtesy pause between chunks to stay under the API rate limit.
			if i < len(chunks)-1 {
				if err := c.config.Sleep(ctx, c.config.ChunkPause); err != nil {
					yield(Booking{}, err)
					return
				}
			}
		}
	}
}
