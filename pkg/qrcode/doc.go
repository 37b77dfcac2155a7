// Package qrcode renders QR code images for TOTP provisioning URIs so a
// client can enroll an authenticator app by scanning instead of typing
// the secret.
package qrcode
