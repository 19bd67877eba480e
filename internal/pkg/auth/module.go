package auth

import "go.uber.org/fx"

// Module provides credential primitives via fx.
var Module = fx.Provide(newPINHasher)

func newPINHasher() PINHasher {
	return NewBcryptHasher(0)
}
