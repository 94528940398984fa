// Package session implements the authentication session controller shared by
// every sign-in surface of the client.
//
// # Overview
//
// A Controller owns at most one Session and moves between three states:
//
//	SignedOut ──SignIn──▶ Authenticating ──ok──▶ SignedIn
//	    ▲                       │                    │
//	    └──────── error ────────┘◀──────SignIn───────┘
//	    ▲                                            │
//	    └──────────────────SignOut───────────────────┘
//
// Credentials come from package credentials and are consumed exactly once.
// The controller is provider-agnostic: it forwards the credential to a Backend
// and classifies the answer with the sentinel errors of package common.
//
// # Concurrency
//
// State is guarded by a mutex and backend calls run without holding it. Only
// one sign-in may be in flight; a second SignIn or CreateAccount is rejected
// with common.ErrAlreadyAuthenticating before its credential is consumed.
// SignOut while Authenticating cancels the attempt: the in-flight call returns
// common.ErrAuthenticationCanceled and its result is discarded.
//
// # Notifications
//
// Observers registered with Subscribe receive an Event on every successful
// sign-in and on sign-out of an existing session. Events are delivered in
// order by a single dispatcher goroutine, so a slow or panicking observer
// never blocks a transition. Observers registered after a transition do not
// see it.
package session
