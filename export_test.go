package panel

// ResetDefaultEnvironment clears the default Environment, so tests can
// set it more than once.
func ResetDefaultEnvironment() {
	defaultEnvironment.Store(nil)
}
