package crawler

import (
	"context"
	"time"

	"jaekwon721/nikewatcher/helpers"
	"jaekwon721/nikewatcher/logger"
	apperrors "jaekwon721/nikewatcher/pkg/errors"
	"jaekwon721/nikewatcher/services/cache"
)

// Pipeline runs the discovery → fetch → normalize sequence for one category.
// Each invocation creates its own Session, so workers never share HTTP
// connection state.
type Pipeline struct {
	Fetcher   *Fetcher
	Cache     cache.CacheService
	BlockTime time.Duration
}

func blockKey(cat Category) string {
	return "ratelimit:" + cat.Name
}

// Run harvests one category and returns a typed Result. All failures are
// captured in the Result; nothing escapes to sibling categories.
func (p *Pipeline) Run(ctx context.Context, cat Category) Result {
	log := logger.ForCategory(cat.Name)

	// Skip categories still blocked from an earlier rate-limit response
	if p.Cache != nil {
		if _, err := p.Cache.Get(blockKey(cat)); err == nil {
			log.Warn().Str("url", cat.EntryURL).Msg("Category blocked by rate limiter, skipping")
			return Result{Category: cat, Err: apperrors.NewRateLimit(cat.Name, "")}
		}
	}

	sess := helpers.NewSession()

	conceptID, err := ResolveConceptID(ctx, sess, cat.EntryURL)
	if err != nil {
		p.blockIfRateLimited(cat, err)
		if apperrors.IsType(err, apperrors.ErrorTypeParsing) {
			log.Warn().Str("url", cat.EntryURL).Msg("No concept id found, skipping category")
		} else {
			log.Error().Err(err).Str("url", cat.EntryURL).Msg("Failed to fetch landing page")
		}
		return Result{Category: cat, Err: err}
	}

	path := helpers.PathFromURL(cat.EntryURL)

	records, pages, err := p.Fetcher.FetchAll(ctx, sess, conceptID, path, cat.Name)
	if err != nil {
		p.blockIfRateLimited(cat, err)
		log.Error().Err(err).Str("url", cat.EntryURL).Int("pages", pages).Msg("Wall fetch failed")
		return Result{Category: cat, Pages: pages, Err: err}
	}

	for i := range records {
		records[i].Category = cat.Name
	}

	log.Info().Int("pages", pages).Int("records", len(records)).Msg("Category harvested")
	return Result{Category: cat, Records: records, Pages: pages}
}

// blockIfRateLimited marks the category in the shared block list so later
// runs leave the storefront alone until the TTL expires
func (p *Pipeline) blockIfRateLimited(cat Category, err error) {
	if p.Cache == nil || !apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
		return
	}
	if cacheErr := p.Cache.Set(blockKey(cat), []byte("1"), p.BlockTime); cacheErr != nil {
		logger.ForCategory(cat.Name).Error().Err(cacheErr).Msg("Failed to set rate-limit block")
	}
}
