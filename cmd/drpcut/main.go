package main

import "github.com/ebaad11/drp-jl-cut-api/internal/cli"

func main() { cli.Main() }
