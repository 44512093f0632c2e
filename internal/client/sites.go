package client

import (
	"context"
	"fmt"

	"github.com/bsalter/interactions-client/internal/models"
)

// SitesService exposes the site lookup operations. Site data changes
// rarely, so these reads ride the long site cache category.
type SitesService struct {
	client *Client
}

// Get fetches a single site by id.
func (s *SitesService) Get(ctx context.Context, id int, opts ...RequestOption) (*models.Site, error) {
	var result models.Site
	endpoint := fmt.Sprintf("api/sites/%d", id)
	if err := s.client.GetJSON(ctx, endpoint, nil, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// UserSites fetches the sites the current user belongs to. The listing is
// user-scoped rather than site-scoped, so no site_id is injected.
func (s *SitesService) UserSites(ctx context.Context, opts ...RequestOption) ([]models.Site, error) {
	var result []models.Site
	opts = append(opts, WithoutSiteScope())
	if err := s.client.GetJSON(ctx, "api/sites", nil, &result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadUserSites fetches the user's sites and installs them into the shared
// site context in one step. Callers typically run this once after sign-in.
func (s *SitesService) LoadUserSites(ctx context.Context, opts ...RequestOption) ([]models.Site, error) {
	sites, err := s.UserSites(ctx, opts...)
	if err != nil {
		return nil, err
	}
	s.client.sites.SetSites(sites)
	return sites, nil
}
