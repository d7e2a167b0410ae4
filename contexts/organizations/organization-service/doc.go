// Package organizations implements the organization resource service inside
// Meridian: fetch -> authorize -> mutate -> persist for every operation, with
// decisions delegated to the central engine through the Authorizer port.
//
// Layering:
// - domain: organization/account/member entities and error taxonomy
// - application: commands/queries orchestrating repositories and decisions
// - ports: stable boundaries for persistence, authorization, task dispatch
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the organizations context.
// - The Authorizer and TaskEnqueuer ports are bridged in internal/platform.
package organizations
