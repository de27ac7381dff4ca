package main

import "github.com/clinio/clinio_backend/cmd"

func main() {
	cmd.Execute()
}
