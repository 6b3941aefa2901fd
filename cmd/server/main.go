package main

import "github.com/thereayou/backstagepass/internal/server"

func main() {
	server.NewServer().Run()
}
