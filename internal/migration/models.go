package migration

import (
	authdomain "github.com/sponsorloop/sponsorloop/internal/auth/domain"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	paymentdomain "github.com/sponsorloop/sponsorloop/internal/payment/domain"
	payoutdomain "github.com/sponsorloop/sponsorloop/internal/payout/domain"
	sponsordomain "github.com/sponsorloop/sponsorloop/internal/sponsor/domain"
	writerdomain "github.com/sponsorloop/sponsorloop/internal/writer/domain"
)

// models lists every persisted type for drivers where the embedded SQL
// migrations do not apply (sqlite local development, mysql).
func models() []interface{} {
	return []interface{}{
		&authdomain.User{},
		&authdomain.Session{},
		&writerdomain.Writer{},
		&writerdomain.BlackoutDate{},
		&sponsordomain.Sponsor{},
		&bookingdomain.Booking{},
		&paymentdomain.EventRecord{},
		&payoutdomain.Payout{},
		&payoutdomain.PayoutBooking{},
	}
}
