package main

import "reviewdesk/internal/app"

func main() {
	app.Main()
}
