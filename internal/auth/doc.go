// Package auth provides authentication and authorization for the club.
//
// It supports two authentication modes:
//   - "none": no authentication required, all requests use a default user ID
//   - "local": local member database with session cookies and Bearer tokens
//
// # Configuration
//
// Set AUTH_MODE to select the mode:
//
//	AUTH_MODE=none   # No auth required (local development)
//	AUTH_MODE=local  # Default, requires registration and login
//
// For local mode, additional configuration:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_TOKEN_EXPIRY=720h              # API token expiry (30 days default)
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//
// The first registered account and the ADMIN_SUPER_EMAIL account become
// admins; everyone else joins as a regular member.
//
// Extract the current user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns 0 in "none" mode
package auth
