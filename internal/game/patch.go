package game

// PlayerPatch is a partial player update. A nil field is left untouched; a
// non-nil field replaces the stored value wholesale. For Insurances and Loans
// that means the whole map is swapped, so flags missing from the patch are
// dropped rather than merged.
type PlayerPatch struct {
	Name         *string     `json:"name,omitempty"`
	Avatar       *string     `json:"avatar,omitempty"`
	Cash         *int64      `json:"cash,omitempty"`
	Account      *int64      `json:"account,omitempty"`
	HasApartment *bool       `json:"hasApartment,omitempty"`
	HasCar       *bool       `json:"hasCar,omitempty"`
	HasFurniture *bool       `json:"hasFurniture,omitempty"`
	Insurances   *Insurances `json:"insurances,omitempty"`
	Loans        *Loans      `json:"loans,omitempty"`
}

func (p PlayerPatch) IsEmpty() bool {
	return p.Name == nil && p.Avatar == nil && p.Cash == nil && p.Account == nil &&
		p.HasApartment == nil && p.HasCar == nil && p.HasFurniture == nil &&
		p.Insurances == nil && p.Loans == nil
}

// apply writes the patch into dst. Name validation happens in the caller
// because it needs the rest of the roster.
func (p PlayerPatch) apply(dst *Player) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Avatar != nil {
		dst.Avatar = *p.Avatar
	}
	if p.Cash != nil {
		dst.Cash = *p.Cash
	}
	if p.Account != nil {
		dst.Account = *p.Account
	}
	if p.HasApartment != nil {
		dst.HasApartment = *p.HasApartment
	}
	if p.HasCar != nil {
		dst.HasCar = *p.HasCar
	}
	if p.HasFurniture != nil {
		dst.HasFurniture = *p.HasFurniture
	}
	if p.Insurances != nil {
		replaced := make(Insurances, len(*p.Insurances))
		for k, v := range *p.Insurances {
			replaced[k] = v
		}
		dst.Insurances = replaced
	}
	if p.Loans != nil {
		replaced := make(Loans, len(*p.Loans))
		for k, v := range *p.Loans {
			replaced[k] = v
		}
		dst.Loans = replaced
	}
}
