// FootTraffic - Foot-Traffic Monitoring and Dwell-Time Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/foottraffic

/*
Package auth implements FootTraffic's two-step login: first credentials
(password or a federated OIDC provider), then a six-digit code emailed to
the account address.

# State machine

Each browser session owns a Machine whose state is exactly one of:

	Anonymous ──login──▶ PendingVerification ──SubmitCode──▶ Authenticated
	    ▲                      │   ▲ ResendCode                 │
	    └────────── Logout ────┴───┴────────────────────────────┘

PendingVerification carries the email, the outstanding code and the
identity that will be promoted. Authenticated carries only the identity; the
code is discarded on promotion. The states are distinct types, so an
authenticated session with a stale code cannot be represented.

A failed code delivery during login does not block the transition: the
result carries a warning and the user can ask for a resend once the
cooldown has elapsed. Codes do not expire and wrong guesses are not
counted.

# Providers

  - PasswordProvider: bcrypt hashes over a UserStore (in-memory or BadgerDB)
  - OIDCProvider: authorization code flow via zitadel/oidc with PKCE

# Sessions and tokens

Registry maps session IDs (random cookies) to machines and expires idle
ones. TokenManager issues HS256 JWTs for authenticated sessions so API
consumers can present a bearer token instead of the cookie.
*/
package auth
