package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/RestVisor/restvisor-back/cmd/app"
)

// @contact.name   RestVisor
// @contact.url    https://github.com/RestVisor
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
