package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	"github.com/sponsorloop/sponsorloop/internal/auth/password"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
	"gorm.io/gorm"
)

const (
	demoWriterEmail    = "writer@sponsorloop.dev"
	demoSponsorEmail   = "sponsor@sponsorloop.dev"
	demoAdminEmail     = "admin@sponsorloop.dev"
	demoPassword       = "sponsorloop"
	demoNewsletterName = "The Weekly Dispatch"
	demoNewsletterSlug = "the-weekly-dispatch"
	demoCompanyName    = "Acme Devtools"
)

// EnsureDemoAccounts seeds a demo writer, sponsor, and admin for local
// development. It is idempotent and safe to run on every startup.
func EnsureDemoAccounts(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		writerUser, err := ensureUser(ctx, tx, node, demoWriterEmail, "Dana", "Hughes", authdomain.RoleWriter)
		if err != nil {
			return err
		}
		if err := ensureWriterProfile(ctx, tx, node, writerUser.ID); err != nil {
			return err
		}

		sponsorUser, err := ensureUser(ctx, tx, node, demoSponsorEmail, "Sam", "Ortiz", authdomain.RoleSponsor)
		if err != nil {
			return err
		}
		if err := ensureSponsorProfile(ctx, tx, node, sponsorUser.ID); err != nil {
			return err
		}

		_, err = ensureUser(ctx, tx, node, demoAdminEmail, "Ops", "Admin", authdomain.RoleAdmin)
		return err
	})
}

func ensureUser(ctx context.Context, tx *gorm.DB, node *snowflake.Node, email, firstName, lastName string, role authdomain.Role) (authdomain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return authdomain.User{}, err
	}

	hash, err := password.Hash(demoPassword)
	if err != nil {
		return authdomain.User{}, err
	}

	user := authdomain.User{
		ID:           node.Generate(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		Role:         role,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return authdomain.User{}, err
	}
	return user, nil
}

func ensureWriterProfile(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	var existing writerdomain.Writer
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	subscribers := 12500
	profile := writerdomain.Writer{
		ID:              node.Generate(),
		UserID:          userID,
		Slug:            demoNewsletterSlug,
		NewsletterName:  demoNewsletterName,
		NewsletterURL:   "https://dispatch.example.com",
		Description:     "A weekly roundup of engineering leadership writing.",
		SubscriberCount: &subscribers,
		PricePerSlot:    25000,
		Currency:        "usd",
		LeadTimeDays:    7,
		SlotsPerWeek:    1,
		PlatformFeeBps:  1000,
	}
	return tx.WithContext(ctx).Create(&profile).Error
}

func ensureSponsorProfile(ctx context.Context, tx *gorm.DB, node *snowflake.Node, userID snowflake.ID) error {
	var existing sponsordomain.Sponsor
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	profile := sponsordomain.Sponsor{
		ID:           node.Generate(),
		UserID:       userID,
		CompanyName:  demoCompanyName,
		WebsiteURL:   "https://acme.example.com",
		BillingEmail: "billing@acme.example.com",
	}
	return tx.WithContext(ctx).Create(&profile).Error
}
