// Command identityd runs the identity service and its admin tooling.
//
//	identityd serve
//	identityd user create --username root --email root@example.com --password ... --role SUPER_ADMIN
//
// Configuration comes from the environment; see internal/infrastructure/config.
package main

import (
	"os"
)

// @title                       Identity Service API
// @version                     1.0
// @description                 Account registration, login and role-gated user management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
