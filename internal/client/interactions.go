package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/cache"
	"github.com/bsalter/interactions-client/internal/models"
)

// InteractionsService exposes the interaction CRUD and search operations.
// Mutations require at least editor rights in the active site and evict the
// interaction, list, and search cache categories.
type InteractionsService struct {
	client *Client
}

// List fetches one page of the active site's interactions.
func (s *InteractionsService) List(ctx context.Context, page, pageSize int, opts ...RequestOption) (*models.InteractionPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var result models.InteractionPage
	if err := s.client.GetJSON(ctx, "api/interactions", params, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches a single interaction by id.
func (s *InteractionsService) Get(ctx context.Context, id int, opts ...RequestOption) (*models.Interaction, error) {
	var result models.Interaction
	endpoint := fmt.Sprintf("api/interactions/%d", id)
	if err := s.client.GetJSON(ctx, endpoint, nil, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// Search fetches one page of interactions matching a free-text query.
func (s *InteractionsService) Search(ctx context.Context, query string, page, pageSize int, opts ...RequestOption) (*models.InteractionPage, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var result models.InteractionPage
	if err := s.client.GetJSON(ctx, "api/search", params, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create stores a new interaction. The payload is validated locally first
// so malformed records never reach the backend.
func (s *InteractionsService) Create(ctx context.Context, interaction *models.Interaction, opts ...RequestOption) (*models.Interaction, error) {
	if interaction.SiteID == 0 {
		if siteID, ok := s.client.sites.ActiveSiteID(); ok {
			interaction.SiteID = siteID
		}
	}

	if err := s.authorizeMutation(ctx, opts); err != nil {
		return nil, err
	}
	if err := s.validatePayload(ctx, interaction, opts); err != nil {
		return nil, err
	}

	var result models.Interaction
	if err := s.client.Post(ctx, "api/interactions", interaction, &result, opts...); err != nil {
		return nil, err
	}

	s.invalidate()
	return &result, nil
}

// Update replaces an existing interaction.
func (s *InteractionsService) Update(ctx context.Context, interaction *models.Interaction, opts ...RequestOption) (*models.Interaction, error) {
	if err := s.authorizeMutation(ctx, opts); err != nil {
		return nil, err
	}
	if err := s.validatePayload(ctx, interaction, opts); err != nil {
		return nil, err
	}

	var result models.Interaction
	endpoint := fmt.Sprintf("api/interactions/%d", interaction.ID)
	if err := s.client.Put(ctx, endpoint, interaction, &result, opts...); err != nil {
		return nil, err
	}

	s.invalidate()
	return &result, nil
}

// Delete removes an interaction.
func (s *InteractionsService) Delete(ctx context.Context, id int, opts ...RequestOption) error {
	if err := s.authorizeMutation(ctx, opts); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("api/interactions/%d", id)
	if err := s.client.Delete(ctx, endpoint, opts...); err != nil {
		return err
	}

	s.invalidate()
	return nil
}

// authorizeMutation enforces the editor threshold client-side so a viewer
// gets immediate feedback without a round-trip.
func (s *InteractionsService) authorizeMutation(ctx context.Context, opts []RequestOption) error {
	if s.client.sites.HasRole(models.RoleEditor) {
		return nil
	}
	return s.failLocal(ctx, apierr.FromResponse(403, nil), opts)
}

func (s *InteractionsService) validatePayload(ctx context.Context, interaction *models.Interaction, opts []RequestOption) error {
	err := s.client.validate.Struct(interaction)
	if err == nil {
		return nil
	}

	fields := map[string]string{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return s.failLocal(ctx, &apierr.ValidationError{Fields: fields}, opts)
}

// failLocal routes locally-raised errors through the same classifier as
// transport failures.
func (s *InteractionsService) failLocal(ctx context.Context, err error, opts []RequestOption) error {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return s.client.fail(ctx, err, options)
}

// invalidate drops every cached read that a mutation could have staled.
func (s *InteractionsService) invalidate() {
	s.client.InvalidateCache(cache.Prefix(models.CategoryInteraction), true)
	s.client.InvalidateCache(cache.Prefix(models.CategoryInteractionList), true)
	s.client.InvalidateCache(cache.Prefix(models.CategorySearch), true)
}
