//go:build !devauth

package middleware

const devBypassEnabled = false
