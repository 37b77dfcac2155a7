// Package sanitizer normalizes user-supplied identity fields before they
// reach the user store, so that lookups are stable regardless of how a
// provider or a login form formatted the value.
package sanitizer
