package crawler

import (
	"context"
	"net/url"

	"jaekwon721/nikewatcher/helpers"
	apperrors "jaekwon721/nikewatcher/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// deeplinkMetaSelector matches the meta tag whose content carries the
// category's deep-link path, including the conceptid query parameter
const deeplinkMetaSelector = `meta[name="branch:deeplink:$deeplink_path"]`

// ResolveConceptID fetches a category landing page and extracts the concept id
// embedded in the deep-link meta tag. A missing tag or parameter yields a
// parsing error, a failed fetch a transport error; the caller treats both the
// same way and skips the category for this run.
func ResolveConceptID(ctx context.Context, sess *helpers.Session, entryURL string) (string, error) {
	body, err := sess.GetHTML(ctx, entryURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", apperrors.NewParsing(entryURL, "failed to parse landing page", err)
	}

	content, exists := doc.Find(deeplinkMetaSelector).Attr("content")
	if !exists || content == "" {
		return "", apperrors.NewParsing(entryURL, "deeplink meta tag missing", nil)
	}

	deeplink, err := url.Parse(content)
	if err != nil {
		return "", apperrors.NewParsing(entryURL, "failed to parse deeplink path", err)
	}

	conceptID := deeplink.Query().Get("conceptid")
	if conceptID == "" {
		return "", apperrors.NewParsing(entryURL, "conceptid missing from deeplink", nil)
	}

	return conceptID, nil
}
