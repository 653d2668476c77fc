// Package auth provides the server side identity layer of the school API:
// users persisted via Bun, bcrypt password hashing, HS256 JWT issuance and
// validation, go-router handlers for register, login, me and logout, and the
// protected route middleware.
//
// Roles:
//   - UserRole follows the guest < member < admin < owner hierarchy. Reading
//     needs guest, editing member, creating admin and deleting owner.
//   - Resource roles carried in the token override the global role for a
//     single resource, see ResourceRoleProvider.
//
// Revocation:
//   - Logout stores the token id in a RevocationStore until the token would
//     have expired. RevocationCheck plugs the store into ProtectedRoute.
//
// Activity sinks:
//   - ActivitySink receives login, registration, logout and record write
//     events. Sinks run best effort, errors are logged and never fail the
//     request.
package auth
