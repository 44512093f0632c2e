// Package cache defines the key namespace shared by every cache tier.
//
// Keys are plain strings assembled from a category prefix plus scoping
// fields. Uniqueness is by convention: all producers go through the builders
// in this file, and bulk invalidation relies on the category prefix being
// the first key segment.
package cache

import (
	"fmt"
	"net/url"

	"github.com/bsalter/interactions-client/internal/models"
)

// Prefix returns the key prefix for a category, suitable for ClearPrefix.
func Prefix(category models.CacheCategory) string {
	return string(category) + ":"
}

// AuthTokenKey identifies the cached credential for a user.
func AuthTokenKey(userID string) string {
	return fmt.Sprintf("%s:token:%s", models.CategoryAuth, userID)
}

// SiteKey identifies a single site record.
func SiteKey(siteID int) string {
	return fmt.Sprintf("%s:%d", models.CategorySite, siteID)
}

// UserSitesKey identifies the list of sites a user belongs to.
func UserSitesKey(userID string) string {
	return fmt.Sprintf("%s:%s", models.CategoryUserSites, userID)
}

// InteractionKey identifies one interaction within a site.
func InteractionKey(siteID, interactionID int) string {
	return fmt.Sprintf("%s:%d:%d", models.CategoryInteraction, siteID, interactionID)
}

// InteractionListKey identifies one page of a site's interaction list.
func InteractionListKey(siteID, page, pageSize int) string {
	return fmt.Sprintf("%s:%d:p%d:s%d", models.CategoryInteractionList, siteID, page, pageSize)
}

// SearchResultsKey identifies one page of search results. The free-text
// query is percent-encoded so special characters cannot corrupt the key
// structure or collide across distinct queries.
func SearchResultsKey(siteID int, query string, page, pageSize int) string {
	return fmt.Sprintf("%s:%d:q=%s:p%d:s%d",
		models.CategorySearch, siteID, url.QueryEscape(query), page, pageSize)
}

// RequestKey builds the transport-level key for a read request: category
// prefix, normalized path, and the query encoded in sorted-parameter order,
// so parameter order never affects the key.
func RequestKey(category models.CacheCategory, u *url.URL) string {
	return fmt.Sprintf("%s:req:%s?%s", category, u.Path, u.Query().Encode())
}
