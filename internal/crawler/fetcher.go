package crawler

import (
	"context"
	"fmt"
	"math"
	mathrand "math/rand"
	"net/url"
	"strconv"
	"time"

	"jaekwon721/nikewatcher/helpers"
	"jaekwon721/nikewatcher/logger"
)

const wallPath = "/discover/product_wall/v1"

// PaceFunc is called between successive page requests of one category.
// It blocks for the politeness delay and returns early with the context's
// error on cancellation.
type PaceFunc func(ctx context.Context) error

// RandomDelay returns a PaceFunc sleeping a random duration in [min, max].
// The returned func is shared across workers, so it draws from the
// goroutine-safe package-level source.
func RandomDelay(min, max time.Duration) PaceFunc {
	return func(ctx context.Context) error {
		delay := min
		if max > min {
			delay += time.Duration(mathrand.Int63n(int64(max - min)))
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// NoDelay is a PaceFunc that never sleeps
func NoDelay(ctx context.Context) error {
	return nil
}

// Fetcher drives the wall API page-cursor loop for one category at a time
type Fetcher struct {
	APIBase     string
	Marketplace string
	Language    string
	ChannelID   string
	PageSize    int
	Pace        PaceFunc
}

// wallURL constructs the first page request for a category
func (f *Fetcher) wallURL(conceptID, path string) string {
	q := url.Values{}
	q.Set("path", path)
	q.Set("attributeIds", conceptID)
	q.Set("queryType", "PRODUCTS")
	q.Set("anchor", "0")
	q.Set("count", strconv.Itoa(f.PageSize))

	return fmt.Sprintf("%s%s/marketplace/%s/language/%s/consumerChannelId/%s?%s",
		f.APIBase, wallPath, f.Marketplace, f.Language, f.ChannelID, q.Encode())
}

// FetchAll walks the category's pages in server cursor order and returns the
// normalized records of every page. Termination is driven solely by the
// absence of pages.next; totalResources feeds progress logging only, since
// the declared total can disagree with the pages actually delivered.
func (f *Fetcher) FetchAll(ctx context.Context, sess *helpers.Session, conceptID, path, category string) ([]ProductRecord, int, error) {
	log := logger.ForCategory(category)

	var page wallResponse
	if err := sess.GetJSON(ctx, f.wallURL(conceptID, path), &page); err != nil {
		return nil, 0, err
	}

	expectedPages := int(math.Ceil(float64(page.Pages.TotalResources) / float64(f.PageSize)))
	log.Debug().
		Int("total_resources", page.Pages.TotalResources).
		Int("expected_pages", expectedPages).
		Msg("Starting wall pagination")

	records := normalizeWall(&page)
	pages := 1
	next := page.Pages.Next

	for next != "" {
		if err := f.Pace(ctx); err != nil {
			return nil, pages, err
		}

		page = wallResponse{}
		if err := sess.GetJSON(ctx, f.APIBase+next, &page); err != nil {
			return nil, pages, err
		}

		records = append(records, normalizeWall(&page)...)
		pages++
		next = page.Pages.Next

		log.Debug().
			Int("page", pages).
			Int("records", len(records)).
			Msg("Fetched wall page")
	}

	return records, pages, nil
}
