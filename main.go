package main

import "vibe-social-backend/cmd"

func main() {
	cmd.Run()
}
