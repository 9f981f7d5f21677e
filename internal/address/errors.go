package address

import "fmt"

// InvalidAddressError reports a recipient that failed syntax validation in
// strict mode.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid recipient address %q", e.Address)
}
