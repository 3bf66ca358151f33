package shr

// ValidationError reports malformed input: wrong image dimensions or
// empty pixel data. It is detected before any quantization work begins.
type ValidationError string

func (e ValidationError) Error() string {
	return "shr: invalid input: " + string(e)
}

// ConfigurationError reports an unknown algorithm identifier or an
// out-of-range parameter. Invalid configuration is never silently
// replaced with a default.
type ConfigurationError string

func (e ConfigurationError) Error() string {
	return "shr: invalid configuration: " + string(e)
}
