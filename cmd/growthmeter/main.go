// Package main is the entry point for the growthmeter service.
package main

func main() {
	Execute()
}
