package issuer

import "sync"

// Provider lazily initializes the issuer identity on first use.
//
// Concurrent first callers serialize on the mutex: exactly one runs the
// bootstrap, the rest wait and observe its result. A failed bootstrap is not
// cached, so a later call retries instead of pinning the process to an error.
type Provider struct {
	mu        sync.Mutex
	identity  *Identity
	bootstrap func() (*Identity, error)
}

// NewProvider creates a Provider around the given bootstrap function.
func NewProvider(bootstrap func() (*Identity, error)) *Provider {
	return &Provider{bootstrap: bootstrap}
}

// NewEnvProvider creates a Provider that loads the identity from a hex seed,
// or generates a fresh key pair when the seed is empty.
func NewEnvProvider(seedHex string) *Provider {
	return NewProvider(func() (*Identity, error) {
		if seedHex != "" {
			return FromSeed(seedHex)
		}
		return Generate()
	})
}

// Identity returns the process identity, bootstrapping it on first call.
func (p *Provider) Identity() (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.identity != nil {
		return p.identity, nil
	}

	id, err := p.bootstrap()
	if err != nil {
		return nil, err
	}
	p.identity = id
	return p.identity, nil
}
