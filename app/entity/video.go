package entity

type Video struct {
	ID         string
	CreatorID  string
	Title      string
	PriceCents int64
}

func (v *Video) IsFree() bool {
	return v.PriceCents == 0
}
