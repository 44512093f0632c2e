package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CacheCategory classifies cached data for TTL selection and bulk
// invalidation. Every key in the cache starts with its category prefix.
type CacheCategory string

const (
	CategoryAuth            CacheCategory = "auth"
	CategorySite            CacheCategory = "site"
	CategoryUserSites       CacheCategory = "user-sites"
	CategoryInteraction     CacheCategory = "interaction"
	CategoryInteractionList CacheCategory = "interaction-list"
	CategorySearch          CacheCategory = "search"
	CategoryDefault         CacheCategory = "default"
)

var validCategories = map[string]bool{
	"auth":             true,
	"site":             true,
	"user-sites":       true,
	"interaction":      true,
	"interaction-list": true,
	"search":           true,
	"default":          true,
}

// UnmarshalYAML implements custom YAML unmarshaling for CacheCategory
func (c *CacheCategory) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	if !validCategories[str] {
		return fmt.Errorf("invalid cache category '%s'", str)
	}
	*c = CacheCategory(str)
	return nil
}
