package utils

func UintToPtr(val uint) *uint {
	return &val
}

func IntToPtr(val int) *int {
	return &val
}

func Float64ToPtr(val float64) *float64 {
	return &val
}
