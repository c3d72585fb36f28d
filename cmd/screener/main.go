package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "screener:", err)
		os.Exit(1)
	}
}
