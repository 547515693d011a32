package main

import (
	"flag"
	"os"

	"github.com/neuraltc/capsule-service/capsuleservice"
)

func main() {
	// Optional build-target flag override (local | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud)")
	flag.Parse()

	if err := capsuleservice.Run(*buildTarget); err != nil {
		os.Exit(1)
	}
}
