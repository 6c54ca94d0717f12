// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// Header names for admin authentication.
const (
	AdminKeyHeader = "X-Admin-Key"
	AdminOTPHeader = "X-Admin-OTP"
)

// RequireAdminKey returns a middleware that guards catalog mutation
// endpoints. The client presents the admin key in X-Admin-Key; it is
// compared against the bcrypt hash from config. When a TOTP secret is
// configured, a valid six-digit code in X-Admin-OTP is also required.
//
// With no key hash configured, all admin requests are rejected. Running
// without a hash is only acceptable in development, and the production
// config guard refuses to start without one.
func RequireAdminKey(keyHash, totpSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keyHash == "" {
				slog.Warn("admin request rejected: no admin key hash configured")
				denyAdmin(w)
				return
			}

			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				denyAdmin(w)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
				slog.Warn("admin request rejected: bad key",
					"remote", clientIP(r),
					"path", r.URL.Path,
				)
				denyAdmin(w)
				return
			}

			if totpSecret != "" {
				code := r.Header.Get(AdminOTPHeader)
				if !totp.Validate(code, totpSecret) {
					slog.Warn("admin request rejected: bad TOTP code",
						"remote", clientIP(r),
						"path", r.URL.Path,
					)
					denyAdmin(w)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func denyAdmin(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}
