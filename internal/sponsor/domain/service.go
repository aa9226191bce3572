package domain

import (
	"context"
	"errors"

	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
)

type CreateSponsorRequest struct {
	CompanyName  string `json:"company_name"`
	WebsiteURL   string `json:"website_url"`
	LogoURL      string `json:"logo_url"`
	BillingEmail string `json:"billing_email"`
}

type UpdateSponsorRequest struct {
	CompanyName  *string `json:"company_name"`
	WebsiteURL   *string `json:"website_url"`
	LogoURL      *string `json:"logo_url"`
	BillingEmail *string `json:"billing_email"`
}

type Service interface {
	Create(ctx context.Context, identity authdomain.Identity, req CreateSponsorRequest) (Sponsor, error)
	GetByID(ctx context.Context, id string) (Sponsor, error)
	GetByUser(ctx context.Context, identity authdomain.Identity) (Sponsor, error)
	Update(ctx context.Context, identity authdomain.Identity, id string, req UpdateSponsorRequest) (Sponsor, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrProfileExists      = errors.New("profile_exists")
	ErrInvalidCompanyName = errors.New("invalid_company_name")
)
