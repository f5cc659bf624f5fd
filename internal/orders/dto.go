package orders

// ListFilters describe the inputs supported by the orders list.
type ListFilters struct {
	PhoneNumber string
	Offset      int
	Limit       int
}

const defaultListLimit = 100

func (f ListFilters) normalized() ListFilters {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
