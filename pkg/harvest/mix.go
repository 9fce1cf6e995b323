package harvest

// Candidate is one image URL paired with the page it came from, eligible for
// download.
type Candidate struct {
	PageURL  string
	ImageURL string
}

// Mix interleaves the per-page image lists round-robin into one ordered
// candidate list. For index i = 0, 1, 2, ... it emits (page, images[i]) for
// every page whose list has an element at index i, in page order, so every
// page contributes near the front regardless of how many images it has.
// Within-page relative order is preserved. The page order is the slice
// order, which HarvestAll keeps identical to the input list.
func Mix(pages []PageImages) []Candidate {
	if len(pages) == 0 {
		return nil
	}

	if len(pages) == 1 {
		page := pages[0]
		candidates := make([]Candidate, 0, len(page.Images))
		for _, img := range page.Images {
			candidates = append(candidates, Candidate{PageURL: page.PageURL, ImageURL: img})
		}
		return candidates
	}

	maxLen := 0
	total := 0
	for _, page := range pages {
		total += len(page.Images)
		if len(page.Images) > maxLen {
			maxLen = len(page.Images)
		}
	}

	candidates := make([]Candidate, 0, total)
	for i := 0; i < maxLen; i++ {
		for _, page := range pages {
			if i < len(page.Images) {
				candidates = append(candidates, Candidate{PageURL: page.PageURL, ImageURL: page.Images[i]})
			}
		}
	}

	return candidates
}
