package main

import "github.com/elys-network/amm-ledger/internal/cli"

func main() {
	cli.Execute()
}
