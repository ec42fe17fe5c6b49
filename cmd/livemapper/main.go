package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/livemapper/cmd/livemapper/app"
)

func main() {
	app.NewApp().Run()
}
