// Package authorization implements the access decision engine inside Meridian.
//
// Layering:
// - domain: subject/resource model and the pure policy engine
// - application: the check use case loading memberships through ports
// - ports: stable boundaries for the membership directory and clock
// - adapters: concrete HTTP and memory implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
//   - Keep this module self-contained under identity-access context.
//   - Do not import other context adapters into domain/application.
//   - Resource services consume decisions through their own Authorizer ports,
//     bridged in internal/platform/authz.
package authorization
