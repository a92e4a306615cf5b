package trakt

import (
	"context"
	"fmt"
	"log"
	"sort"

	"toonarchive/models"
)

// Flatten converts raw list items into export rows. Only shows and
// movies survive; episode and person entries are dropped.
func Flatten(raw []ListItemRow, sourceSlug string, sourceListID int64) []models.ListItem {
	out := make([]models.ListItem, 0, len(raw))
	for _, it := range raw {
		var obj *mediaObject
		switch it.Type {
		case "show":
			obj = it.Show
		case "movie":
			obj = it.Movie
		default:
			continue
		}

		row := models.ListItem{
			SourceListSlug: sourceSlug,
			SourceListID:   sourceListID,
			Rank:           it.Rank,
			ListedAt:       it.ListedAt,
			ListItemID:     it.ID,
			Type:           it.Type,
		}
		if obj != nil {
			row.Title = obj.Title
			row.Year = obj.Year
			row.TraktID = obj.IDs.Trakt
			row.TraktSlug = obj.IDs.Slug
			row.TMDBID = obj.IDs.TMDB
			row.IMDBID = obj.IDs.IMDB
			row.TVDBID = obj.IDs.TVDB
		}
		out = append(out, row)
	}
	return out
}

// Dedupe removes duplicates across lists, keeping the first occurrence.
// When any row in the corpus carries a Trakt id, the id is the
// uniqueness key and id-less rows pass through untouched; otherwise the
// (slug, title) pair is the key for every row.
func Dedupe(items []models.ListItem) []models.ListItem {
	haveID := false
	for _, it := range items {
		if it.TraktID != nil {
			haveID = true
			break
		}
	}

	seen := make(map[string]bool, len(items))
	out := make([]models.ListItem, 0, len(items))
	for _, it := range items {
		var key string
		if haveID {
			if it.TraktID == nil {
				out = append(out, it)
				continue
			}
			key = fmt.Sprintf("id:%d", *it.TraktID)
		} else {
			key = "st:" + it.TraktSlug + "\x00" + it.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

// SortItems orders rows by (kind, title), empty titles last.
func SortItems(items []models.ListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if (a.Title == "") != (b.Title == "") {
			return b.Title == ""
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Title < b.Title
	})
}

// ExportLists fetches every configured list of a user, flattens,
// dedupes across lists and sorts the merged result.
func (c *Client) ExportLists(ctx context.Context, user string, slugs []string) ([]models.ListItem, error) {
	lists, err := c.UserLists(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("user lists for %s: %w", user, err)
	}

	var merged []models.ListItem
	for _, slug := range slugs {
		listID, err := ListIDForSlug(lists, slug)
		if err != nil {
			return nil, err
		}
		log.Printf("[trakt] fetching %s -> %d", slug, listID)

		raw, err := c.FetchListItems(ctx, listID)
		if err != nil {
			return nil, err
		}
		log.Printf("[trakt] %s: %d items", slug, len(raw))

		merged = append(merged, Flatten(raw, slug, listID)...)
	}

	merged = Dedupe(merged)
	SortItems(merged)
	return merged, nil
}
