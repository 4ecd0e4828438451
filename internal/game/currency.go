package game

const (
	CurrencyHUF = "HUF"
	CurrencyEUR = "EUR"

	DefaultCurrency = CurrencyHUF
)

// Insurance kinds priced by the rule table. InsuranceChildFuturePaid is a
// player flag only; it has no price.
const (
	InsuranceChildFuture     = "childFuture"
	InsurancePension         = "pension"
	InsuranceHomeGuard       = "homeGuard"
	InsuranceCasco           = "casco"
	InsuranceChildFuturePaid = "childFuturePaid"
)

const (
	LoanApartment = "apartment"
	LoanCar       = "car"
)

type InsurancePrice struct {
	Cost   int64  `json:"cost"`
	Payout *int64 `json:"payout,omitempty"`
}

type CurrencyRules struct {
	Symbol               string                    `json:"symbol"`
	StartCash            int64                     `json:"startCash"`
	StartAccount         int64                     `json:"startAccount"`
	StartPassThrough     int64                     `json:"startPassThrough"`
	StartLanding         int64                     `json:"startLanding"`
	ApartmentCash        int64                     `json:"apartmentCash"`
	ApartmentInstallment int64                     `json:"apartmentInstallment"`
	ApartmentDown        int64                     `json:"apartmentDown"`
	ApartmentMonthly     int64                     `json:"apartmentMonthly"`
	CarCash              int64                     `json:"carCash"`
	CarInstallment       int64                     `json:"carInstallment"`
	CarDown              int64                     `json:"carDown"`
	CarMonthly           int64                     `json:"carMonthly"`
	Insurances           map[string]InsurancePrice `json:"insurances"`
}

var currencyOrder = []string{CurrencyHUF, CurrencyEUR}

func payout(v int64) *int64 { return &v }

func currencyTable() map[string]CurrencyRules {
	return map[string]CurrencyRules{
		CurrencyHUF: {
			Symbol:               "Ft",
			StartCash:            238_000,
			StartAccount:         3_000_000,
			StartPassThrough:     500_000,
			StartLanding:         1_000_000,
			ApartmentCash:        9_500_000,
			ApartmentInstallment: 11_000_000,
			ApartmentDown:        2_000_000,
			ApartmentMonthly:     90_000,
			CarCash:              7_000_000,
			CarInstallment:       7_960_000,
			CarDown:              2_500_000,
			CarMonthly:           130_000,
			Insurances: map[string]InsurancePrice{
				InsuranceChildFuture: {Cost: 180_000, Payout: payout(1_500_000)},
				InsurancePension:     {Cost: 180_000},
				InsuranceHomeGuard:   {Cost: 30_000},
				InsuranceCasco:       {Cost: 50_000},
			},
		},
		CurrencyEUR: {
			Symbol:               "€",
			StartCash:            18_000,
			StartAccount:         10_000,
			StartPassThrough:     2_000,
			StartLanding:         4_000,
			ApartmentCash:        30_000,
			ApartmentInstallment: 35_000,
			ApartmentDown:        15_000,
			ApartmentMonthly:     500,
			CarCash:              25_000,
			CarInstallment:       27_500,
			CarDown:              6_500,
			CarMonthly:           500,
			Insurances: map[string]InsurancePrice{
				InsuranceChildFuture: {Cost: 600, Payout: payout(5_000)},
				InsurancePension:     {Cost: 600},
				InsuranceHomeGuard:   {Cost: 100},
				InsuranceCasco:       {Cost: 160},
			},
		},
	}
}

// RulesFor returns a fresh copy of the rule table for code. Callers may mutate
// the result freely.
func RulesFor(code string) (CurrencyRules, bool) {
	rules, ok := currencyTable()[code]
	return rules, ok
}

func SupportedCurrencies() []string {
	out := make([]string, len(currencyOrder))
	copy(out, currencyOrder)
	return out
}

func IsSupportedCurrency(code string) bool {
	_, ok := RulesFor(code)
	return ok
}
