package main

import (
	"log"
	"os"
)

func main() {
	defer func() {}()
	if len(os.Args) > 5 {
		os.Exit(1) // want "вызов os.Exit в функции main запрещён"
	}
	if len(os.Args) > 4 {
		log.Fatalf("bad args: %v", os.Args) // want "вызов log.Fatalf в функции main запрещён"
	}
	log.Println("ok")
}

func helper() {
	os.Exit(2)
}
