// Package auth guards the mutating operator endpoints.
//
// Two credential kinds are accepted: a static API key in the X-API-Key header
// and an HS256 bearer JWT. Either one yields an Identity; a RoleAuthorizer
// then requires the operator role for the requested action. When no
// credential is configured the Guard lets every request through.
package auth
