package main

import (
	"fmt"
	"os"

	"taller/internal/service"
)

// Prints the bcrypt hash of the first argument, for seeding users by hand.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
