// Command resetpw provides a CLI utility for admin password management
// in the product media service.
//
// It supports the following operations:
//   - reset: Reset the admin password (requires existing password setup)
//   - status: Check if a password is configured
//
// Usage:
//
//	resetpw <command>
//
// Commands:
//
//	reset   Reset the password for the admin account. This requires
//	        that a password has already been set up via the API.
//	        All existing sessions will be invalidated.
//
//	status  Display whether a password is configured. If no password
//	        exists, initial setup must be done via the setup endpoint.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//
// The service uses a single-admin authentication model. Initial password
// setup is performed through POST /api/auth/setup; this utility only
// resets an existing password or checks configuration status.
package main
