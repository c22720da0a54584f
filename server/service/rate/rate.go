// Package rate resolves the hourly rate that applies to a shift.
package rate

// Resolve returns the first of clientRate and employeeRate that is set and non-zero,
// falling back to managerRate. A nil managerRate resolves to 0.
func Resolve(clientRate, employeeRate, managerRate *float64) float64 {
	for _, r := range []*float64{clientRate, employeeRate} {
		if r != nil && *r != 0 {
			return *r
		}
	}
	if managerRate != nil {
		return *managerRate
	}
	return 0
}
