//go:build devauth

package middleware

// Local builds made with -tags devauth accept the fixed development token.
const devBypassEnabled = true
