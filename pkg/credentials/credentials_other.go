//go:build !windows

package credentials

// ReadFromStore reports that there is no platform credential store. The
// credentials are kept in the configuration file instead.
func (this *Credentials) ReadFromStore() (supported bool, err error) {
	return false, nil
}

func (this *Credentials) WriteToStore() (supported bool, err error) {
	return false, nil
}
