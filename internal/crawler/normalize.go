package crawler

// normalizeWall flattens one wall response into product records. Only the
// first product of each grouping is taken (the storefront's representative
// colorway); groupings without any product payload are dropped silently.
// The caller attaches the category name.
func normalizeWall(resp *wallResponse) []ProductRecord {
	records := make([]ProductRecord, 0, len(resp.ProductGroupings))

	for _, grouping := range resp.ProductGroupings {
		if len(grouping.Products) == 0 {
			continue
		}

		p := grouping.Products[0]
		records = append(records, ProductRecord{
			Code:     p.ProductCode,
			Title:    p.Copy.Title,
			Subtitle: p.Copy.SubTitle,
			Badge:    p.BadgeLabel,
			Currency: p.Prices.Currency,
			Price:    p.Prices.CurrentPrice,
			URL:      p.PdpURL.URL,
			ImageURL: p.ColorwayImages.PortraitURL,
		})
	}

	return records
}
