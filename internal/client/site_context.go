package client

import (
	"fmt"
	"sync"

	"github.com/bsalter/interactions-client/internal/models"
)

// SiteContext tracks the sites the current user belongs to and which one is
// active. The active site scopes every request and gates mutations by role.
type SiteContext struct {
	mu       sync.RWMutex
	sites    map[int]models.Site
	activeID int
}

// NewSiteContext creates an empty site context.
func NewSiteContext() *SiteContext {
	return &SiteContext{sites: map[int]models.Site{}}
}

// SetSites replaces the known site list. An active site that is no longer a
// member is cleared.
func (s *SiteContext) SetSites(sites []models.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sites = make(map[int]models.Site, len(sites))
	for _, site := range sites {
		s.sites[site.ID] = site
	}
	if _, ok := s.sites[s.activeID]; !ok {
		s.activeID = 0
	}
}

// SetActive selects the active site; the user must be a member.
func (s *SiteContext) SetActive(siteID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[siteID]; !ok {
		return fmt.Errorf("not a member of site %d", siteID)
	}
	s.activeID = siteID
	return nil
}

// ActiveSiteID returns the active site id, if one is selected.
func (s *SiteContext) ActiveSiteID() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, s.activeID != 0
}

// ActiveRole returns the user's role in the active site.
func (s *SiteContext) ActiveRole() (models.SiteRole, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[s.activeID]
	if !ok {
		return "", false
	}
	return site.Role, true
}

// HasRole reports whether the user's role in the active site grants at
// least min.
func (s *SiteContext) HasRole(min models.SiteRole) bool {
	role, ok := s.ActiveRole()
	return ok && role.AtLeast(min)
}
