// cmd/porecall/main.go
package main

import (
	"porecall/internal/app"
	"porecall/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
