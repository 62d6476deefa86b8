package main

import "github.com/goplus/boostpkg/cmd/boostpkg/internal"

func main() {
	internal.Execute()
}
