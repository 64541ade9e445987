package domain

// Service is the bookable service configuration. Owned outside the engine and
// never modified by it.
type Service struct {
	ID                          int64
	TenantID                    *int64
	Name                        string
	DurationMinutes             int
	AllowMultipleClientsPerSlot bool
	RequiresApproval            bool
	CancellationAllowed         bool
	CancellationNoticeMinutes   int
	RescheduleAllowed           bool
	RescheduleNoticeMinutes     int

	// Pricing is opaque to the engine
	PricingType string
	PriceAmount *float64
	Currency    string
}

// InitialStatus returns the status a new booking of this service starts in
func (s *Service) InitialStatus() BookingStatus {
	if s.RequiresApproval {
		return StatusPending
	}
	return StatusConfirmed
}

// SkipsConflictCheck returns true if bookings may share provider time
func (s *Service) SkipsConflictCheck() bool {
	return s.AllowMultipleClientsPerSlot
}

// Provider is the unit against which conflicts are checked
type Provider struct {
	ID       int64
	TenantID *int64
	Name     string
}

// ServiceAddon extends a booking by extra minutes
type ServiceAddon struct {
	ID                   int64
	Name                 string
	ExtraDurationMinutes int
	PriceAmount          *float64
	Currency             string
}

// Snapshot copies the addon into a booking-owned row
func (a *ServiceAddon) Snapshot() BookingAddon {
	var price *float64
	if a.PriceAmount != nil {
		p := *a.PriceAmount
		price = &p
	}
	return BookingAddon{
		AddonID:                      a.ID,
		Name:                         a.Name,
		ExtraDurationMinutesSnapshot: a.ExtraDurationMinutes,
		PriceAmountSnapshot:          price,
		CurrencySnapshot:             a.Currency,
	}
}

// TenantFor resolves the tenant passed to the slot authority:
// provider tenant first, then service tenant
func TenantFor(service *Service, provider *Provider) *int64 {
	if provider != nil && provider.TenantID != nil {
		return provider.TenantID
	}
	if service != nil {
		return service.TenantID
	}
	return nil
}
