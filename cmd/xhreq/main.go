package main

import (
	"fmt"
	"os"

	"github.com/HexmosTech/xhreq"
)

func main() {
	if err := xhreq.Main(&xhreq.Options{}); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
