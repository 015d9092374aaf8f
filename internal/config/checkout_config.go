package config

type CheckoutConfig interface {
	GetHomeCountry() string
	GetCurrency() string
}

type Checkout struct{}

var _ CheckoutConfig = Checkout{}

// GetHomeCountry returns the country code treated as a domestic shipping
// destination.
func (Checkout) GetHomeCountry() string {
	return GetEnv("HOME_COUNTRY", "ID")
}

func (Checkout) GetCurrency() string {
	return GetEnv("CURRENCY", "IDR")
}
