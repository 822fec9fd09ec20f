package ai

import "context"

// NopProvider stands in when no API key is configured.
// Every call fails with ErrProviderDisabled.
type NopProvider struct{}

// NewNopProvider returns a NopProvider.
func NewNopProvider() *NopProvider {
	return &NopProvider{}
}

// Complete always returns ErrProviderDisabled.
func (NopProvider) Complete(_ context.Context, _ Request) (string, error) {
	return "", ErrProviderDisabled
}
